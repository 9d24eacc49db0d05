package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/douban"
	"github.com/mlorentedev/roastmydouban/internal/roast"
)

// Roaster generates both result kinds.
type Roaster interface {
	Roast(ctx context.Context, items []douban.Interest, overrides credential.Set) (roast.Result, error)
	Compliment(ctx context.Context, items []douban.Interest, overrides credential.Set) (roast.Result, error)
}

type generateRequest struct {
	Interests []douban.Interest `json:"interests"`
	APIKeys   map[string]string `json:"apiKeys"`
}

type generateFunc func(ctx context.Context, items []douban.Interest, overrides credential.Set) (roast.Result, error)

// Roast answers with the normalized roast plus the model under "_model".
func Roast(rs Roaster) http.HandlerFunc {
	return generate(rs.Roast, "_model")
}

// Compliment answers with the normalized compliment plus the model under "model".
func Compliment(rs Roaster) http.HandlerFunc {
	return generate(rs.Compliment, "model")
}

func generate(fn generateFunc, modelField string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Interests == nil {
			writeError(w, http.StatusBadRequest, "interests is required")
			return
		}

		res, err := fn(r.Context(), req.Interests, credential.FromRequest(req.APIKeys))
		if err != nil {
			switch {
			case errors.Is(err, roast.ErrNoProvider):
				writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
			case errors.Is(err, roast.ErrUnparsable):
				writeError(w, http.StatusBadGateway, "model response could not be parsed")
			default:
				writeError(w, http.StatusBadGateway, "generation failed")
			}
			return
		}

		body := make(map[string]any, len(res.Fields)+1)
		for k, v := range res.Fields {
			body[k] = v
		}
		body[modelField] = res.Model
		writeJSON(w, http.StatusOK, body)
	}
}

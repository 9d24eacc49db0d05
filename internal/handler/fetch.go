package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mlorentedev/roastmydouban/internal/douban"
)

// Loader returns a user's rated records for one category.
type Loader interface {
	Load(ctx context.Context, userID, category string) (douban.Collection, error)
}

type fetchRequest struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

func Fetch(loader Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fetchRequest
		if !decodeBody(w, r, &req) {
			return
		}

		req.UserID = strings.TrimSpace(req.UserID)
		if req.UserID == "" || req.Type == "" {
			writeError(w, http.StatusBadRequest, "userId and type are required")
			return
		}
		if !douban.Categories[req.Type] {
			writeError(w, http.StatusBadRequest, "type must be one of book, movie, music")
			return
		}

		coll, err := loader.Load(r.Context(), req.UserID, req.Type)
		if err != nil {
			slog.Error("fetch failed", "user", req.UserID, "type", req.Type, "error", err)
			switch {
			case errors.Is(err, douban.ErrNotFound):
				writeError(w, http.StatusNotFound, "user not found or profile is private")
			case errors.Is(err, douban.ErrBlocked):
				writeError(w, http.StatusForbidden, "Douban refused the request, try again later")
			default:
				writeError(w, http.StatusBadGateway, "failed to fetch data from Douban")
			}
			return
		}

		if coll.Interests == nil {
			coll.Interests = []douban.Interest{}
		}
		writeJSON(w, http.StatusOK, coll)
	}
}

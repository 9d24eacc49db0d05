package handler

import (
	"net/http"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
)

// Models lists the providers usable without a caller-supplied key.
func Models(providers []adapter.Provider, defaults credential.Set) http.HandlerFunc {
	models := make([]adapter.ModelInfo, 0, len(providers))
	for _, p := range providers {
		if defaults.Has(p.Name()) {
			models = append(models, adapter.Info(p))
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models)
	}
}

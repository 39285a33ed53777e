package server

import (
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

func pingHandlerFunc() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogctx.Debug(r.Context(), "Answering ping request")
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"result": "ping"})
	})
}

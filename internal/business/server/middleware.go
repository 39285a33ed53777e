package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/middleware/responsewriter"
	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
)

var corsAllowedHeaders = strings.Join([]string{
	"authorization",
	"x-client-info",
	"apikey",
	"content-type",
	"x-original-host",
	"x-forwarded-host",
}, ", ")

// corsMiddleware sets the CORS headers on every response so browsers can
// call the API from any dashboard origin.
func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			next.ServeHTTP(w, r)
		})
	}
}

func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// recoverMiddleware turns a panic into a 500 JSON error response.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := r.Context()
			slogctx.Error(ctx, "Recovered from panic while serving request",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)

			if rw, ok := w.(*responsewriter.Writer); ok && rw.Written() {
				return
			}
			writeError(ctx, w, serviceerr.ErrUnknown)
		}()

		next.ServeHTTP(w, r)
	})
}

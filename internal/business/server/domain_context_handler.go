package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/middleware/domain"
	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

const maxRequestBodyBytes = 64 << 10

// ContextResolver classifies a request into a domain context.
type ContextResolver interface {
	Resolve(ctx context.Context, req tenant.Request) (tenant.DomainContext, error)
}

type domainContextRequest struct {
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func domainContextHandler(resolver ContextResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body domainContextRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&body); err != nil {
			slogctx.Debug(ctx, "Rejected malformed request body", "error", err)
			writeError(ctx, w, serviceerr.InvalidRequest("malformed JSON body"))
			return
		}

		hosts, err := domain.FromContext(ctx)
		if err != nil {
			hosts.Forwarded = domain.ForwardedHost(r.Header)
		}

		dc, err := resolver.Resolve(ctx, tenant.Request{
			Domain:        body.Domain,
			Path:          body.Path,
			ForwardedHost: hosts.Forwarded,
		})
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, dc)
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slogctx.Warn(ctx, "Could not write response", "error", err)
	}
}

// writeError reports service errors with their own status and description.
// Anything else is logged and reported as a 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var svcErr *serviceerr.Error
	if !errors.As(err, &svcErr) {
		slogctx.Error(ctx, "Failed to process request", "error", err)
		svcErr = serviceerr.ErrUnknown
	}

	msg := svcErr.Description
	if msg == "" {
		msg = string(svcErr.Err)
	}

	writeJSON(ctx, w, svcErr.HTTPStatus(), errorResponse{Error: msg})
}

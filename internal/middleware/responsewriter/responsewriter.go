// Package responsewriter provides a response writer that remembers the
// status code written for the original *http.Request, and utilities to
// inject it into the context and also retrieve it.
package responsewriter

import (
	"context"
	"errors"
	"net/http"
)

// Using an unexported type prevents key collisions from other packages.
type responseWriterKey string

// ResponseWriterKey is the context key for the response writer.
const ResponseWriterKey responseWriterKey = "response-writer"

// Writer records the status code and whether anything has been written.
type Writer struct {
	http.ResponseWriter

	status  int
	written bool
}

func (w *Writer) WriteHeader(status int) {
	if w.written {
		return
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *Writer) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status code, or 200 if nothing was written yet.
func (w *Writer) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Written reports whether the header has been sent.
func (w *Writer) Written() bool {
	return w.written
}

func (w *Writer) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// ResponseWriterMiddleware is an http.Handler middleware that wraps the
// response writer of the original *http.Request and injects it into the
// context.
func ResponseWriterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*Writer)
		if !ok {
			rw = &Writer{ResponseWriter: w}
		}
		ctx := context.WithValue(r.Context(), ResponseWriterKey, rw)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// ResponseWriterFromContext is a helper function that retrieves the response
// writer from the context.
func ResponseWriterFromContext(ctx context.Context) (*Writer, error) {
	rw, ok := ctx.Value(ResponseWriterKey).(*Writer)
	if !ok {
		return nil, errors.New("response writer not found in context")
	}
	return rw, nil
}

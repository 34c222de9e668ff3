// Package http exposes the REST API.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/royalboe/commercia/internal/service"
	"github.com/royalboe/commercia/pkg/httputil"
	"github.com/royalboe/commercia/pkg/middleware"
)

// maxBodySize limits request bodies to 1MB to prevent DoS via large payloads.
const maxBodySize = 1 << 20

// actorFrom builds the service actor from the request's identity headers.
func actorFrom(r *http.Request) service.Actor {
	return service.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Admin:  middleware.IsAdmin(r.Context()),
	}
}

// cartCode extracts the anonymous session cart code from the request.
func cartCode(r *http.Request) string {
	if code := r.Header.Get("X-Cart-Code"); code != "" {
		return code
	}
	return r.URL.Query().Get("code")
}

// decodeJSON parses the request body into v, enforcing the body size limit.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	return true
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

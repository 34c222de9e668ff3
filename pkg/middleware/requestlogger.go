package middleware

import (
	"log/slog"
	"net/http"

	"github.com/royalboe/commercia/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with request_id,
// user_id, and trace ids, and stores it in context for handlers to retrieve
// with logger.FromContext. Mount after AccessLog (request_id), Identity
// (user_id), and Tracing (span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

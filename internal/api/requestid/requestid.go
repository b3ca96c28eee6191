// Package requestid tags each console request with an X-Request-ID.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// Middleware reuses an incoming X-Request-ID or mints a UUID, echoes it on the
// response and stores it on the request context and its zerolog logger.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		l := zerolog.Ctx(ctx).With().Str("request_id", id).Logger()
		ctx = l.WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request id, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

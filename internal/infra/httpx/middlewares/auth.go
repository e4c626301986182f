// Package middlewares holds the HTTP middlewares of the storefront API.
package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jcmexdev/storefront/internal/core/ports"
)

type ctxKey string

const (
	callerIDKey       ctxKey = "caller_id"
	idempotencyKeyKey ctxKey = "idempotency_key"

	// HeaderIdempotencyKey is set by clients that want double-submit
	// protection on checkout.
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// SessionAuth resolves the bearer token to a caller ID and stores it in
// the request context. Requests with no live session get 401 before any
// handler runs.
func SessionAuth(sessions ports.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"error":"missing_session"}`, http.StatusUnauthorized)
				return
			}

			callerID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, ports.ErrNoSession) {
					http.Error(w, `{"error":"missing_session"}`, http.StatusUnauthorized)
					return
				}
				http.Error(w, `{"error":"session_unavailable"}`, http.StatusBadGateway)
				return
			}

			ctx := context.WithValue(r.Context(), callerIDKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AttachIdempotencyKey copies the idempotency header into the context so
// the checkout handler can hand it to the workflow.
func AttachIdempotencyKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), idempotencyKeyKey, r.Header.Get(HeaderIdempotencyKey))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerID returns the caller resolved by SessionAuth, or "".
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey).(string)
	return id
}

// IdempotencyKey returns the submission key attached by
// AttachIdempotencyKey, or "".
func IdempotencyKey(ctx context.Context) string {
	k, _ := ctx.Value(idempotencyKeyKey).(string)
	return k
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

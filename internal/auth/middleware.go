package auth

import (
	"context"
	"net/http"
	"strings"

	"noteful/internal/apperr"
	"noteful/internal/respond"

	"go.uber.org/zap"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireBearer rejects requests without a valid `Authorization: Bearer`
// token and stores the token's principal in the request context.
func RequireBearer(issuer *Issuer, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				respond.Error(w, r, log, apperr.ErrUnauthorized)
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.User)))
		})
	}
}

// Require returns the request's principal, writing a 401 when there is none.
func Require(w http.ResponseWriter, r *http.Request, log *zap.Logger) (Principal, bool) {
	p, ok := FromContext(r.Context())
	if !ok {
		respond.Error(w, r, log, apperr.ErrUnauthorized)
	}
	return p, ok
}

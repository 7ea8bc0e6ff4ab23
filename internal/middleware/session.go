package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitbill/internal/token"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionTokenKey is the context key for a session token sent as a bearer
// token.
const SessionTokenKey contextKey = "session_token"

// SessionToken extracts the bearer session token from the context.
// Returns empty string if not found.
func SessionToken(ctx context.Context) string {
	tok, _ := ctx.Value(SessionTokenKey).(string)
	return tok
}

// BearerToken returns an interceptor that accepts the session token in the
// Authorization header as an alternative to the request message. The token is
// only extracted here; the service validates it. A malformed header is
// rejected.
func BearerToken() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return next(ctx, req)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, token.ErrInvalidToken)
			}

			ctx = context.WithValue(ctx, SessionTokenKey, parts[1])
			return next(ctx, req)
		}
	}
}

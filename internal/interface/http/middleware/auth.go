package middleware

import (
	"context"
	"net/http"

	"github.com/Bedrock-Technology/uniBTC/internal/core/application"
)

type callerKey struct{}

// AccountHeader carries the authenticated account identity. The reverse
// proxy in front of the daemon is expected to strip and re-set it after
// verifying the caller's signature.
const AccountHeader = "X-Account"

// Auth resolves the caller from the account header and grants the roles
// configured for it. Requests without the header pass through anonymous,
// role checks downstream reject them where it matters.
func Auth(roles map[string][]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := application.Caller{Account: r.Header.Get(AccountHeader)}
			if caller.Account != "" {
				caller.Roles = roles[caller.Account]
			}
			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the caller resolved by the Auth middleware.
func CallerFromContext(ctx context.Context) application.Caller {
	caller, _ := ctx.Value(callerKey{}).(application.Caller)
	return caller
}

package middleware

import (
	"net/http"

	"github.com/mkovalev/mybooks-backend/pkg/ctxutil"
)

// AdminKeyHeader carries the admin key for destructive endpoints.
const AdminKeyHeader = "X-Admin-Key"

type adminKeyVerifier interface {
	Enabled() bool
	Verify(key string) error
}

// AdminKey returns middleware that guards destructive endpoints with the
// configured admin key. With no key configured the endpoints answer 404,
// so a default deployment exposes no admin surface at all.
func AdminKey(verifier adminKeyVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.Enabled() {
				http.NotFound(w, r)
				return
			}
			if err := verifier.Verify(r.Header.Get(AdminKeyHeader)); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := ctxutil.WithAdmin(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

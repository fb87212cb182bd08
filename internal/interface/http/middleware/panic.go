// panic.go recovers from handler panics and turns them into plain 500
// responses instead of tearing the connection down, logging the stack trace.
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic-recovery middleware recovered from panic: %v", rec)
				log.Errorf("stack trace: %v", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				// nolint:errcheck
				json.NewEncoder(w).Encode(map[string]string{
					"name":    "INTERNAL_ERROR",
					"message": "something went wrong",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

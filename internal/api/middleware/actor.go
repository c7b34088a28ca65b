package middleware

import (
	"net/http"
	"strings"

	"github.com/daap14/formats/internal/format"
)

// ActorHeader names the caller recorded in the created_by / updated_by audit columns.
const ActorHeader = "X-User"

// Actor copies the X-User header into the request context for the storage
// gateways. Requests without the header are recorded with no actor.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actor != "" {
			r = r.WithContext(format.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

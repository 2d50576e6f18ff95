package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Traceparent, Tracestate"
)

// CORS lets browser origins call the API with the session cookie. With no
// allowed origins every origin is echoed back, which suits local development.
// Origins outside a non-empty list get no CORS headers and no preflight.
func CORS(allowed []string) func(http.Handler) http.Handler {
	origins := normalizeOrigins(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			permitted := origin != "" && originListed(origins, origin)
			if permitted {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Expose-Headers", "Traceparent, Location")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !permitted {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginAllowed reports whether a browser origin may use the API. An empty
// allow list admits every origin.
func OriginAllowed(allowed []string, origin string) bool {
	return originListed(normalizeOrigins(allowed), strings.TrimSpace(origin))
}

func originListed(origins []string, origin string) bool {
	return len(origins) == 0 || slices.Contains(origins, strings.TrimRight(origin, "/"))
}

func normalizeOrigins(allowed []string) []string {
	origins := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

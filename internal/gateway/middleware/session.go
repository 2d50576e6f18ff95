package middleware

import (
	"context"
	"net/http"
	"time"

	"workshophub/internal/gateway/entity"
)

const SessionCookie = "whub_session"

type ctxKeySession struct{}

// Session makes sure every request carries a browser session id, issuing a
// cookie when the request has none or an unrecognised one.
func Session(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id entity.SessionID
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = entity.NormalizeSessionID(c.Value)
			}
			if !id.Valid() {
				id = entity.NewSessionID()
				cookie := &http.Cookie{
					Name:     SessionCookie,
					Value:    id.String(),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				}
				if ttl > 0 {
					cookie.MaxAge = int(ttl / time.Second)
				}
				http.SetCookie(w, cookie)
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

func WithSession(ctx context.Context, id entity.SessionID) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, id)
}

// SessionFrom returns the id attached by Session, or "".
func SessionFrom(ctx context.Context) entity.SessionID {
	id, _ := ctx.Value(ctxKeySession{}).(entity.SessionID)
	return id
}

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workshophub/internal/gateway/entity"
	"workshophub/internal/tester"
)

func TestSessionIssuesCookieOnce(t *testing.T) {
	var seen entity.SessionID
	h := Session(time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/optimizer", nil))
	cookies := rec.Result().Cookies()
	tester.Eq(t, len(cookies), 1)
	tester.Eq(t, cookies[0].Name, SessionCookie)
	tester.Eq(t, cookies[0].Value, seen.String())
	tester.True(t, cookies[0].HttpOnly)
	tester.True(t, seen.Valid())

	first := seen
	req := httptest.NewRequest(http.MethodGet, "/api/optimizer", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.Eq(t, len(rec.Result().Cookies()), 0)
	tester.Eq(t, seen, first)
}

func TestSessionReplacesForgedCookie(t *testing.T) {
	var seen entity.SessionID
	h := Session(0, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.True(t, seen.Valid())
	tester.Eq(t, len(rec.Result().Cookies()), 1)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.False(t, called)
	tester.Eq(t, rec.Code, http.StatusNoContent)
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "http://localhost:5173")
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Credentials"), "true")
}

func TestCORSAllowList(t *testing.T) {
	h := CORS([]string{"https://hub.example.com/"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://hub.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.Eq(t, rec.Code, http.StatusOK)
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "https://hub.example.com")

	req = httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.Eq(t, rec.Code, http.StatusOK)
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "")

	req = httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	tester.Eq(t, rec.Code, http.StatusForbidden)
}

func TestOriginAllowed(t *testing.T) {
	tester.True(t, OriginAllowed(nil, "https://anywhere.example.com"))
	tester.True(t, OriginAllowed([]string{" ", ""}, "https://anywhere.example.com"))

	allowed := []string{"https://hub.example.com/", " http://localhost:5173 "}
	tester.True(t, OriginAllowed(allowed, "https://hub.example.com"))
	tester.True(t, OriginAllowed(allowed, "http://localhost:5173/"))
	tester.False(t, OriginAllowed(allowed, "https://evil.example.com"))
	tester.False(t, OriginAllowed(allowed, ""))
}

func TestTraceLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Trace(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	tester.Eq(t, rec.Code, http.StatusInternalServerError)
	tester.True(t, strings.Contains(buf.String(), "status=500"), buf.String())
	tester.True(t, strings.Contains(buf.String(), "level=ERROR"), buf.String())
}

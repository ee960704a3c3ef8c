package mid

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSharedSecret(t *testing.T) {
	const secret = "s3cret"
	h := SharedSecret(secret, "/api/auth", "/api/health")(okHandler())

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name:   "no credentials",
			req:    func() *http.Request { return httptest.NewRequest("GET", "/api/stored-data", nil) },
			status: http.StatusUnauthorized,
		},
		{
			name: "session cookie",
			req: func() *http.Request {
				r := httptest.NewRequest("GET", "/api/stored-data", nil)
				r.AddCookie(&http.Cookie{Name: AuthCookie, Value: SessionToken(secret)})
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "raw secret in cookie is rejected",
			req: func() *http.Request {
				r := httptest.NewRequest("GET", "/api/stored-data", nil)
				r.AddCookie(&http.Cookie{Name: AuthCookie, Value: secret})
				return r
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "bearer",
			req: func() *http.Request {
				r := httptest.NewRequest("POST", "/api/dataforseo", nil)
				r.Header.Set("Authorization", "Bearer "+secret)
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "wrong bearer",
			req: func() *http.Request {
				r := httptest.NewRequest("POST", "/api/dataforseo", nil)
				r.Header.Set("Authorization", "Bearer nope")
				return r
			},
			status: http.StatusUnauthorized,
		},
		{
			name:   "open path",
			req:    func() *http.Request { return httptest.NewRequest("POST", "/api/auth", nil) },
			status: http.StatusOK,
		},
		{
			name:   "open path prefix does not leak",
			req:    func() *http.Request { return httptest.NewRequest("GET", "/api/healthz", nil) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "preflight",
			req:    func() *http.Request { return httptest.NewRequest("OPTIONS", "/api/dataforseo", nil) },
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestSharedSecretPrefix(t *testing.T) {
	h := SharedSecret("x", "/public/")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/public/logo.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSharedSecretDisabled(t *testing.T) {
	h := SharedSecret("")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stored-data", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionCookie(t *testing.T) {
	c := SessionCookie("pw", true)
	if c.Name != AuthCookie || c.Value != SessionToken("pw") || c.MaxAge != 86400 || !c.Secure {
		t.Fatalf("unexpected cookie %+v", c)
	}
	cleared := SessionCookie("", false)
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected clearing cookie, got %+v", cleared)
	}
}

func TestSessionTokenStable(t *testing.T) {
	if SessionToken("a") != SessionToken("a") {
		t.Fatal("token not deterministic")
	}
	if SessionToken("a") == SessionToken("b") {
		t.Fatal("tokens collide")
	}
	if SessionToken("a") == "a" {
		t.Fatal("token must not equal the secret")
	}
}

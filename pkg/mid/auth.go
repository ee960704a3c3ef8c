package mid

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

// AuthCookie is the session cookie set after a successful login.
const AuthCookie = "icons-auth"

// SessionTTL is the lifetime of the session cookie.
const SessionTTL = 24 * time.Hour

// SessionToken derives the cookie value for secret, so the secret itself
// never travels in a cookie.
func SessionToken(secret string) string {
	sum := sha256.Sum256([]byte("demandscope-session:" + secret))
	return hex.EncodeToString(sum[:])
}

// CheckSecret compares a candidate password to the secret in constant time.
func CheckSecret(secret, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1
}

// SessionCookie builds the login cookie. An empty secret clears it.
func SessionCookie(secret string, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     AuthCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secret == "" {
		c.MaxAge = -1
		return c
	}
	c.Value = SessionToken(secret)
	c.MaxAge = int(SessionTTL.Seconds())
	return c
}

// Authorized reports whether r carries the session cookie or a bearer token
// matching secret.
func Authorized(r *http.Request, secret string) bool {
	if c, err := r.Cookie(AuthCookie); err == nil {
		if subtle.ConstantTimeCompare([]byte(c.Value), []byte(SessionToken(secret))) == 1 {
			return true
		}
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return CheckSecret(secret, strings.TrimPrefix(h, "Bearer "))
	}
	return false
}

// SharedSecret rejects requests without valid credentials with 401. Paths
// equal to an entry in open, or under it when the entry ends in "/", pass
// through. An empty secret disables the check.
func SharedSecret(secret string, open ...string) Middleware {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOpen(r.URL.Path, open) || r.Method == http.MethodOptions || Authorized(r, secret) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="demandscope"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
		})
	}
}

func isOpen(path string, open []string) bool {
	for _, p := range open {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

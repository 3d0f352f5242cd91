package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CSRFCookieName is fixed and well-known so client script can read the
// token and echo it in request bodies (double-submit scheme). The cookie
// is deliberately not HttpOnly.
const CSRFCookieName = "csrf"

// CookieSettings holds the per-process cookie parameters. The auth cookie
// name is randomized once at startup, which keeps stale cookies from
// earlier process runs from being mistaken for live sessions.
type CookieSettings struct {
	AuthName string
	MaxAge   time.Duration
	Secure   bool
}

func NewCookieSettings(maxAge time.Duration, secure bool) *CookieSettings {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &CookieSettings{
		AuthName: "auth_" + suffix[:8],
		MaxAge:   maxAge,
		Secure:   secure,
	}
}

func (c *CookieSettings) setSession(w http.ResponseWriter, authToken, csrfToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.AuthName,
		Value:    authToken,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: false,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *CookieSettings) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.AuthName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// authToken extracts the session token from the request, if present.
func (c *CookieSettings) authToken(r *http.Request) string {
	cookie, err := r.Cookie(c.AuthName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// csrfCookie extracts the CSRF token cookie value, if present.
func csrfCookie(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srolel/passkeep/internal/server/auth"
	"github.com/srolel/passkeep/internal/server/config"
	"github.com/srolel/passkeep/internal/server/ratelimit"
	"github.com/srolel/passkeep/internal/server/services"
	"github.com/srolel/passkeep/internal/server/testutil"
)

type noopLimiter struct{}

func (noopLimiter) Enforce(ctx context.Context, username, ip string) error { return nil }

// env runs the real handler stack over in-memory repositories, with a
// cookie-jar client standing in for a browser.
type env struct {
	t       *testing.T
	srv     *Server
	ts      *httptest.Server
	base    *url.URL
	client  *http.Client
	manager *testutil.Manager
	mailer  *testutil.CaptureMailer
	tokens  *auth.TokenService
}

func newEnv(t *testing.T) *env {
	return newEnvWithLimiter(t, noopLimiter{})
}

func newEnvWithLimiter(t *testing.T, limiter ratelimit.Limiter) *env {
	t.Helper()

	db := testutil.NewMockDB(t)
	manager := testutil.NewManager()
	mailer := testutil.NewCaptureMailer()
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService("test-pepper")
	logger := testutil.Logger()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	srv := NewServer(cfg.EndpointAddr, logger,
		NewCookieSettings(cfg.SessionMaxAge, cfg.SecureCookies),
		services.NewSessionService(db, manager, hasher, tokens, limiter),
		services.NewAccountService(db, manager, hasher, tokens, mailer, logger, cfg),
		services.NewCredentialService(db, manager),
	)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	base, err := url.Parse(ts.URL)
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &env{
		t:       t,
		srv:     srv,
		ts:      ts,
		base:    base,
		client:  &http.Client{Jar: jar},
		manager: manager,
		mailer:  mailer,
		tokens:  tokens,
	}
}

// post sends a JSON body and decodes the JSON response into out when out
// is non-nil. Returns the HTTP status.
func (e *env) post(path string, body any, out any) int {
	e.t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(e.t, err)

	resp, err := e.client.Post(e.ts.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(e.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// cookie returns the named cookie currently held by the jar, or "".
func (e *env) cookie(name string) string {
	for _, c := range e.client.Jar.Cookies(e.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (e *env) csrf() string {
	return e.cookie(CSRFCookieName)
}

func (e *env) authCookie() string {
	return e.cookie(e.srv.cookies.AuthName)
}

func (e *env) mailedToken(rawURL string) string {
	e.t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(e.t, err)
	token := u.Query().Get("token")
	require.NotEmpty(e.t, token)
	return token
}

func (e *env) register(username, email, password string) {
	e.t.Helper()
	status := e.post("/api/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
	require.Equal(e.t, http.StatusOK, status)
}

func (e *env) activate(email string) {
	e.t.Helper()
	token := e.mailedToken(e.mailer.ActivationURLs[email])
	status := e.post("/api/confirm", map[string]string{"token": token}, nil)
	require.Equal(e.t, http.StatusOK, status)
}

func (e *env) login(username, password string) {
	e.t.Helper()
	status := e.post("/api/login", map[string]string{
		"username": username, "password": password,
	}, nil)
	require.Equal(e.t, http.StatusOK, status)
	require.NotEmpty(e.t, e.authCookie())
	require.NotEmpty(e.t, e.csrf())
}

// Package client implements the HTTP API client: it keeps the session
// cookies in a jar, echoes the CSRF token in mutating requests, and
// encrypts credential fields before they leave the process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/srolel/passkeep/internal/cryptox"
	"github.com/srolel/passkeep/internal/shared"
)

// Credential is a decrypted entry as presented to the user.
type Credential struct {
	Site     string
	Username string
	Password string
}

type Client struct {
	base *url.URL
	http *http.Client
}

func New(baseURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar error: %w", err)
	}

	return &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("request encode error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String()+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("response decode error: %w", err)
			}
		}
		return nil
	case http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case http.StatusTooManyRequests:
		return shared.ErrRateLimited
	default:
		return shared.ErrValidation
	}
}

// csrfToken returns the CSRF token currently held in the jar, or "".
func (c *Client) csrfToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == "csrf" {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.post(ctx, "/api/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
}

func (c *Client) Confirm(ctx context.Context, token string) error {
	return c.post(ctx, "/api/confirm", map[string]string{"token": token}, nil)
}

// Login authenticates and stores the issued cookies in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.post(ctx, "/api/login", map[string]string{
		"username": username, "password": password,
	}, nil)
}

// Refresh rotates the session and returns the logged-in username.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.post(ctx, "/api/refresh", map[string]string{"csrf": c.csrfToken()}, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/logout", map[string]string{}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/api/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, newPassword string) error {
	return c.post(ctx, "/api/change-password", map[string]string{
		"token": token, "password": newPassword,
	}, nil)
}

// AddCredential encrypts the site username and password with key and
// stores the envelopes. Plaintext never reaches the wire.
func (c *Client) AddCredential(ctx context.Context, key []byte, cred Credential) error {
	encUser, err := cryptox.Encrypt(key, cred.Username)
	if err != nil {
		return err
	}
	encPass, err := cryptox.Encrypt(key, cred.Password)
	if err != nil {
		return err
	}

	return c.post(ctx, "/api/passwords", map[string]string{
		"csrf":     c.csrfToken(),
		"site":     cred.Site,
		"username": encUser,
		"password": encPass,
	}, nil)
}

// SearchCredentials fetches the entries for site and decrypts them with
// key. A wrong key surfaces as shared.ErrDecryptionFailure.
func (c *Client) SearchCredentials(ctx context.Context, key []byte, site string) ([]Credential, error) {
	var resp []struct {
		Site     string `json:"site"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := c.post(ctx, "/api/passwords/search", map[string]string{
		"csrf": c.csrfToken(), "site": site,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]Credential, 0, len(resp))
	for _, e := range resp {
		username, err := cryptox.Decrypt(key, e.Username)
		if err != nil {
			return nil, err
		}
		password, err := cryptox.Decrypt(key, e.Password)
		if err != nil {
			return nil, err
		}
		out = append(out, Credential{Site: e.Site, Username: username, Password: password})
	}

	return out, nil
}

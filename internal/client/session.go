package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// sessionState is the on-disk form of the cookie jar. The auth cookie
// name is chosen by the server, so cookies are stored by name rather
// than assumed.
type sessionState struct {
	Cookies []sessionCookie `json:"cookies"`
}

type sessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveSession writes the current session cookies to path so a later
// process can resume the session.
func (c *Client) SaveSession(path string) error {
	state := sessionState{}
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		state.Cookies = append(state.Cookies, sessionCookie{Name: cookie.Name, Value: cookie.Value})
	}

	buf, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode error: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("session dir error: %w", err)
	}

	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return fmt.Errorf("session write error: %w", err)
	}

	return nil
}

// LoadSession restores cookies saved by SaveSession. A missing file is
// not an error; the client simply has no session.
func (c *Client) LoadSession(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("session read error: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(buf, &state); err != nil {
		return fmt.Errorf("session decode error: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	c.http.Jar.SetCookies(c.base, cookies)

	return nil
}

// DropSession deletes the saved session file, if any.
func DropSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session remove error: %w", err)
	}
	return nil
}

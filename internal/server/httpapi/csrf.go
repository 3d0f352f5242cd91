package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/srolel/passkeep/internal/shared"
)

// guardCSRF validates the double-submit pair: the token echoed in the
// request body must equal the csrf cookie. An attacker riding the session
// cookie cannot read the csrf cookie, so they cannot produce the matching
// body value.
//
// On mismatch (including either side missing) the presented session is
// revoked unconditionally and both cookies are cleared; callers map the
// returned shared.ErrCSRFViolation to an authentication failure.
func (s *Server) guardCSRF(w http.ResponseWriter, r *http.Request, bodyToken string) error {
	cookieToken := csrfCookie(r)

	if bodyToken != "" && cookieToken != "" &&
		subtle.ConstantTimeCompare([]byte(bodyToken), []byte(cookieToken)) == 1 {
		return nil
	}

	// forced logout: a failed pair is treated as session riding
	if authToken := s.cookies.authToken(r); authToken != "" {
		if err := s.sessions.Logout(r.Context(), authToken); err != nil {
			s.logger.Error(r.Context(), "forced logout failed", "error", err.Error())
		}
	}
	s.cookies.clearSession(w)

	return shared.ErrCSRFViolation
}

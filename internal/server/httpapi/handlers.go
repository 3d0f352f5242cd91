package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/srolel/passkeep/internal/shared"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	CSRF string `json:"csrf"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type credentialRequest struct {
	CSRF     string `json:"csrf"`
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type searchRequest struct {
	CSRF string `json:"csrf"`
	Site string `json:"site"`
}

type credentialResponse struct {
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type usernameResponse struct {
	Username string `json:"username"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return shared.ErrValidation
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// writeError maps service errors onto the wire. Unexpected errors are
// logged in full but leave the response generic.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrAlreadyExists),
		errors.Is(err, shared.ErrTokenExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failure"})
	case errors.Is(err, shared.ErrUnauthorized),
		errors.Is(err, shared.ErrCSRFViolation):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication failure"})
	case errors.Is(err, shared.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many attempts"})
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request failed"})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeOK(w)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.Activate(r.Context(), req.Token); err != nil {
		// no session is involved: a bad token is a bad request, not 401
		if errors.Is(err, shared.ErrUnauthorized) {
			err = shared.ErrValidation
		}
		s.writeError(w, r, err)
		return
	}

	writeOK(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.sessions.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		if errors.Is(err, shared.ErrRateLimited) {
			s.writeError(w, r, err)
			return
		}
		// wrong password, unknown or inactive user, internal failure:
		// all indistinguishable to the caller
		s.writeError(w, r, shared.ErrUnauthorized)
		return
	}

	s.cookies.setSession(w, session.AuthToken, session.CSRFToken)
	writeOK(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.guardCSRF(w, r, req.CSRF); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.sessions.Refresh(r.Context(), s.cookies.authToken(r))
	if err != nil {
		s.cookies.clearSession(w)
		s.writeError(w, r, err)
		return
	}

	s.cookies.setSession(w, session.AuthToken, session.CSRFToken)
	writeJSON(w, http.StatusOK, usernameResponse{Username: session.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	authToken := s.cookies.authToken(r)
	if authToken == "" {
		s.writeError(w, r, shared.ErrUnauthorized)
		return
	}

	if err := s.sessions.Logout(r.Context(), authToken); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cookies.clearSession(w)
	writeOK(w)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeOK(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			err = shared.ErrValidation
		}
		s.writeError(w, r, err)
		return
	}

	writeOK(w)
}

func (s *Server) handleAddCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.guardCSRF(w, r, req.CSRF); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.sessions.Resolve(r.Context(), s.cookies.authToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.credentials.Add(r.Context(), user.ID, req.Site, req.Username, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeOK(w)
}

func (s *Server) handleSearchCredentials(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.guardCSRF(w, r, req.CSRF); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.sessions.Resolve(r.Context(), s.cookies.authToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.credentials.Search(r.Context(), user.ID, req.Site)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]credentialResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, credentialResponse{
			Site:     e.Site,
			Username: e.SiteUsername,
			Password: e.SitePassword,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

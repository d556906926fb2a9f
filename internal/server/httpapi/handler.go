package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/msavelyev/authkeeper/internal/common"
	"github.com/msavelyev/authkeeper/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type revokeRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrors(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.identity.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFailure(r, w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "email", req.Email)
	s.writeResult(w, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrors(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFailure(r, w, err)
		return
	}

	s.writeResult(w, result)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrors(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" || req.RefreshToken == "" {
		s.writeErrors(w, http.StatusBadRequest, "token and refreshToken are required")
		return
	}

	result, err := s.identity.Refresh(r.Context(), req.Token, req.RefreshToken)
	if err != nil {
		s.writeFailure(r, w, err)
		return
	}

	s.writeResult(w, result)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrors(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.identity.RevokeAll(r.Context(), req.Token); err != nil {
		s.writeFailure(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeResult(w http.ResponseWriter, result *services.AuthResult) {
	s.writeJSON(w, http.StatusOK, authResponse{
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// writeFailure maps a service error onto the wire: authentication failures
// become 400 with their reasons listed, a transient store outage becomes 503
// (the only retryable class), anything else is a 500.
func (s *Server) writeFailure(r *http.Request, w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Errors: verr.Reasons})
	case isAuthFailure(err):
		s.writeErrors(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(r.Context(), "store unavailable", "error", err.Error())
		s.writeErrors(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		s.logger.Error(r.Context(), "request failed", "error", err.Error())
		s.writeErrors(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeErrors(w http.ResponseWriter, status int, reasons ...string) {
	s.writeJSON(w, status, errorResponse{Errors: reasons})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

var authFailures = []error{
	common.ErrAccountExists,
	common.ErrAccountNotFound,
	common.ErrInvalidCredentials,
	common.ErrInvalidToken,
	common.ErrTokenNotExpired,
	common.ErrRefreshTokenNotFound,
	common.ErrRefreshTokenExpired,
	common.ErrRefreshTokenInvalidated,
	common.ErrRefreshTokenUsed,
	common.ErrTokenMismatch,
}

// isAuthFailure reports whether err is one of the terminal authentication
// failures that must not be retried by clients.
func isAuthFailure(err error) bool {
	for _, target := range authFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

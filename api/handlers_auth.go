package api

import (
	"net/http"
)

// handleLogin authenticates a user and issues a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp := s.authService.Login(req.Email, req.Password)
	if !resp.Success {
		respondWithJSON(w, http.StatusUnauthorized, resp)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp := s.authService.Register(req.Name, req.Email, req.Password, req.Phone)
	if !resp.Success {
		respondWithJSON(w, http.StatusBadRequest, resp)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/user"
)

// AuthHandlers handles registration and login.
type AuthHandlers struct {
	users  *user.Service
	logger *zap.Logger
}

func NewAuthHandlers(users *user.Service, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{users: users, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a fresh credential.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	cred, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			respondError(w, "Email already registered", http.StatusBadRequest)
		case errors.Is(err, user.ErrInvalidEmail):
			respondError(w, "a valid email is required", http.StatusBadRequest)
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		default:
			h.logger.Error("registration failed", zap.Error(err))
			respondError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"token":   cred.Token,
		"userId":  cred.UserID,
		"message": "User registered successfully",
	})
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password produce the same response.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	cred, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(w, "Invalid email or password", http.StatusBadRequest)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(w, "internal error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token":   cred.Token,
		"userId":  cred.UserID,
		"message": "Login successful",
	})
}

package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/billpay/internal/auth"
	"github.com/mmynk/billpay/internal/httputil"
	"github.com/mmynk/billpay/internal/models"
)

// AuthService handles login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// LoginRequest carries the credentials. The password is never logged.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Message  string          `json:"message"`
	UserType models.UserType `json:"user_type"`
	Token    string          `json:"token"`
}

// Login handles POST /_login.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, bodyError(err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	sub, err := s.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("Login failed", "username", req.Username)
			httputil.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeError(w, r, s.logger, err)
		return
	}

	token, err := s.jwtManager.Generate(sub)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.logger.Info("Subscriber logged in", "subscriber_number", sub.SubscriberNumber, "user_type", sub.UserType)
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:  "Welcome",
		UserType: sub.UserType,
		Token:    token,
	})
}

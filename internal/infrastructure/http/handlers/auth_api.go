package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/cookease/api/internal/application/auth"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/infrastructure/http/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication endpoints.
type AuthHandlers struct {
	authService *auth.Service
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandlers creates the authentication handlers.
func NewAuthHandlers(authService *auth.Service, cfg *config.Config, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		frontendURL: cfg.Auth.FrontendURL,
		logger:      logger.Named("auth-handlers"),
	}
}

// Signup handles POST /auth/signup. Registering with the email of a
// Google-only account upgrades that account in place and answers 200 rather
// than 201.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd auth.RegisterCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}

	result, err := h.authService.Register(r.Context(), cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusCreated
	message := "Account created"
	if result.Upgraded {
		status = http.StatusOK
		message = "Password added to existing account"
	}
	writeMessage(w, status, message, result)
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd auth.LoginCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}

	result, err := h.authService.Login(r.Context(), cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return
	}

	dto, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}

// Verify handles GET /auth/verify. Reaching it through the authentication
// middleware already proves the token, so it just confirms.
func (h *AuthHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"valid": true, "userId": userID})
}

// UpdateProfile handles PUT /auth/update-profile.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return
	}

	var cmd auth.UpdateProfileCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}

	dto, err := h.authService.UpdateProfile(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated", dto)
}

// GoogleLogin handles GET /auth/google: it redirects the browser to
// Google's consent screen.
func (h *AuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()
	http.Redirect(w, r, h.authService.LoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /auth/google/callback. Success and failure
// both redirect back to the frontend, carrying either ?token= or ?error=.
func (h *AuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "google_auth_failed")
		return
	}

	result, err := h.authService.HandleGoogleCallback(r.Context(), code)
	if err != nil {
		if errors.Is(err, user.ErrGoogleIDMismatch) {
			h.redirectWithError(w, r, "email_already_linked_to_different_google_account")
			return
		}
		h.logger.Warn("google callback failed", zap.Error(err))
		h.redirectWithError(w, r, "google_auth_failed")
		return
	}

	http.Redirect(w, r,
		h.frontendURL+"/#/login?token="+url.QueryEscape(result.Token)+"&success=google_login",
		http.StatusTemporaryRedirect)
}

func (h *AuthHandlers) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r,
		h.frontendURL+"/#/login?error="+url.QueryEscape(code),
		http.StatusTemporaryRedirect)
}

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mynews/mynews-api/internal/httputil"
	"github.com/mynews/mynews-api/internal/logging"
	"github.com/mynews/mynews-api/internal/ratelimit"
	"github.com/mynews/mynews-api/internal/user"
)

// Handler contains HTTP handlers for the authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the profile update request body
type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is the confirmation body returned by several endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new inactive account and send an activation email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterInput true "Registration fields"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or duplicate email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	message, err := h.service.Register(r.Context(), req)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			logger.Warn("registration failed: validation error")
			httputil.RespondValidationError(w, "Input data validation failed", validationErr.Fields)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "User with this email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrMissingFields) {
			logger.Warn("registration failed: missing required field")
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeMissingFields, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered")
	httputil.RespondJSON(w, MessageResponse{Message: message}, http.StatusOK)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive a session token plus profile fields. A credential mismatch returns 200 with an "Invalid Credentials" message.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResult
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      403 {object} httputil.ErrorResponse "Account not activated"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	validated, err := h.service.ValidateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if validated == nil {
		// Kept as a 200 with a message body rather than a 401, matching
		// the public contract clients already depend on
		logger.Warn("login failed: invalid credentials")
		httputil.RespondJSON(w, MessageResponse{Message: "Invalid Credentials"}, http.StatusOK)
		return
	}

	result, err := h.service.Login(r.Context(), validated.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("login failed: user not found")
			httputil.RespondErrorWithCode(w, "User not found!", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrAccountNotActive) {
			logger.Warn("login failed: account not activated")
			httputil.RespondErrorWithCode(w, "Account is not activated!", httputil.CodeAccountNotActive, http.StatusForbidden)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", result.ID)
	httputil.RespondJSON(w, result, http.StatusOK)
}

// Activate handles account activation
// @Summary      Activate account
// @Description  Activate an account using the one-time token from the activation email.
// @Tags         auth
// @Produce      json
// @Param        token path string true "Activation token"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Invalid activation token"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /auth/activate/{token} [get]
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")
	if err := h.service.Activate(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidActivationToken) {
			logger.Warn("activation failed: invalid token")
			httputil.RespondErrorWithCode(w, "Activation link is invalid!", httputil.CodeInvalidActivationToken, http.StatusNotFound)
			return
		}
		logger.Error("activation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user activated")
	httputil.RespondJSON(w, MessageResponse{Message: "User activated successfully!"}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Email a one-time password reset link to the account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      404 {object} httputil.ErrorResponse "No account with that email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", req.Email)
		httputil.RespondErrorWithCode(w, "please wait before requesting another reset", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}
	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	message, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("forgot password failed: user not found")
			httputil.RespondErrorWithCode(w, "User with this email does not exist", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("forgot password failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset email requested")
	httputil.RespondJSON(w, MessageResponse{Message: message}, http.StatusOK)
}

// ResetPassword handles password reset with a token
// @Summary      Reset password
// @Description  Set a new password using a one-time reset token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Password too short"
// @Failure      404 {object} httputil.ErrorResponse "Invalid reset token"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	message, err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			logger.Warn("password reset failed: invalid token")
			httputil.RespondErrorWithCode(w, "Invalid password reset token", httputil.CodeInvalidResetToken, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrPasswordTooShort) {
			logger.Warn("password reset failed: password too short")
			httputil.RespondErrorWithCode(w, "Password must be at least 8 characters long", httputil.CodePasswordTooShort, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset")
	httputil.RespondJSON(w, MessageResponse{Message: message}, http.StatusOK)
}

// UpdateUser handles profile updates for the authenticated user
// @Summary      Update profile
// @Description  Update the first and last name of the authenticated user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateUserRequest true "Name fields"
// @Success      200 {object} user.Projection
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /auth/user [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update user request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("update user failed: not found", "user_id", userID)
			httputil.RespondErrorWithCode(w, "User not found.", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("update user failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user profile updated", "user_id", userID)
	httputil.RespondJSON(w, updated, http.StatusOK)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

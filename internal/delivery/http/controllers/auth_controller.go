package controllers

import (
	"log/slog"
	"net/http"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" example:"Ada Lovelace"`
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"secret1"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	User      *domain.User `json:"user"`
}

// UserResponse is the envelope for a single user.
type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    *domain.User `json:"data"`
}

// LoginSuccessResponse is the envelope for POST /auth/login.
type LoginSuccessResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    LoginResponse `json:"data"`
}

// AuthController handles registration, login and the caller's profile.
type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

// NewAuthController creates an AuthController with the given logger and service.
func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register a user
// @Description Creates an account with the user role and sends a welcome email.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.RegisterRequest true "Registration data"
// @Success 201 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse "errors lists every field problem"
// @Failure 503 {object} helpers.APIResponse
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "User registered successfully", user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a Bearer JWT carrying the user id, email and role.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Login successful", LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// Profile godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /auth/profile [get]
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}
	user, err := c.Service.Profile(r.Context(), p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "", user)
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless; clients discard theirs. The call only confirms the token was valid.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// UpdateProfileRequest is the request body for PUT /auth/profile. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" example:"Ada King"`
	Email *string `json:"email,omitempty" example:"ada@example.com"`
}

// ChangePasswordRequest is the request body for POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// TokenResponse carries a replacement token.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// ForgotPasswordRequest is the request body for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

// ResetPasswordRequest is the request body for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfile godoc
// @Summary Update the current user
// @Description Changes the caller's name or email. Role and active state are admin-only.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Router /auth/profile [put]
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), p.UserID, domain.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword godoc
// @Summary Change password
// @Description Tokens issued before the change stop working; the response carries a fresh one.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} helpers.APIResponse{data=controllers.TokenResponse}
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Router /auth/change-password [post]
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "Access denied. No token provided")
		return
	}
	var req ChangePasswordRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	token, err := c.Service.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Password changed successfully", TokenResponse{Token: token, TokenType: "Bearer"})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description The reply is the same whether or not the address has an account.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.ForgotPasswordRequest true "Account email"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	if err := c.Service.ForgotPassword(r.Context(), req.Email); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "If an account with that email exists, a password reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Reset a password
// @Description Sets a new password using the token from the reset email. Each token works once and expires after an hour.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Router /auth/reset-password [post]
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	if err := c.Service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Password has been reset successfully", nil)
}

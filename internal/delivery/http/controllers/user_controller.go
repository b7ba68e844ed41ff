package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// SetRoleRequest is the request body for PUT /users/{id}/role.
type SetRoleRequest struct {
	Role string `json:"role" enums:"admin,user"`
}

// Validate implements helpers.Validator.
func (s SetRoleRequest) Validate() []domain.FieldError {
	if strings.TrimSpace(s.Role) == "" {
		return []domain.FieldError{{Field: "role", Message: "Role is required"}}
	}
	return nil
}

// UserList is one page of users.
type UserList struct {
	Users      []*domain.User         `json:"users"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// UserListResponse is the envelope for GET /users.
type UserListResponse struct {
	Success bool     `json:"success"`
	Data    UserList `json:"data"`
}

// UserController serves the admin-only /users endpoints.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} controllers.UserListResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	users, total, err := c.Service.ListUsers(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "", UserList{
		Users:      users,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} controllers.UserResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /users/{id} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "", user)
}

// SetRole godoc
// @Summary Change a user's role
// @Description Admins cannot remove their own admin role.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body controllers.SetRoleRequest true "New role"
// @Success 200 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /users/{id}/role [put]
func (c *UserController) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	user, err := c.Service.SetRole(r.Context(), p, r.PathValue("id"), role)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "User role updated successfully", user)
}

// UpdateUserRequest is the request body for PUT /users/{id}. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty" enums:"admin,user"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func (u UpdateUserRequest) toDomain() domain.UserUpdate {
	out := domain.UserUpdate{Name: u.Name, Email: u.Email, IsActive: u.IsActive}
	if u.Role != nil {
		role := domain.Role(strings.ToLower(strings.TrimSpace(*u.Role)))
		out.Role = &role
	}
	return out
}

// UserStatsResponse is the envelope for GET /users/stats.
type UserStatsResponse struct {
	Success bool             `json:"success"`
	Data    domain.UserStats `json:"data"`
}

// Update godoc
// @Summary Update a user
// @Description Admins cannot demote or deactivate themselves.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body controllers.UpdateUserRequest true "Fields to change"
// @Success 200 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /users/{id} [put]
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	user, err := c.Service.UpdateUser(r.Context(), p, r.PathValue("id"), req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "User updated successfully", user)
}

// Delete godoc
// @Summary Delete a user
// @Description Users who created events cannot be deleted; deactivate them instead.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /users/{id} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := c.Service.DeleteUser(r.Context(), p, r.PathValue("id")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

// ToggleActive godoc
// @Summary Activate or deactivate a user
// @Description Deactivated users cannot log in and their existing tokens stop working.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /users/{id}/toggle-active [patch]
func (c *UserController) ToggleActive(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	user, err := c.Service.ToggleActive(r.Context(), p, r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{NotFound: "User not found"})
		return
	}
	msg := "User deactivated successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msg, user)
}

// Stats godoc
// @Summary User statistics
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserStatsResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /users/stats [get]
func (c *UserController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "", stats)
}

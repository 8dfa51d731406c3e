package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/rbac"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserEnvelope struct {
	User *service.UserResponse `json:"user"`
}

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Admin user management
	admin := router.Group("/admin/users")
	admin.Use(middleware.RequireRole(rbac.UserAdmins))
	{
		admin.GET("", h.ListUsers)
		admin.GET("/:id", h.GetUserByID)
		admin.POST("", h.CreateUser)
		admin.PUT("/:id", h.UpdateUser)
		admin.DELETE("/:id", h.DeleteUser)
	}

	// Self service (owner or admin)
	self := router.Group("/users/:id")
	self.Use(middleware.RequireOwnerOrAdmin("id"))
	{
		self.GET("", h.GetUserByID)
		self.PUT("/password", h.ChangePassword)
	}
}

// ListUsers handles GET /admin/users
// @Summary      List users
// @Description  Lists live users, newest first, filtered by role, status and a name/email search
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Role name"
// @Param        status  query     string  false  "active, inactive or suspended"
// @Param        search  query     string  false  "Substring of name or email"
// @Param        limit   query     int     false  "Page size (default 50, max 100)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  service.UserList
// @Failure      401     {object}  response.Body
// @Failure      403     {object}  response.Body
// @Router       /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	res, err := h.userService.List(c.Request.Context(), service.UserListQuery{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("search"),
		Params: pagination.Parse(c, pagination.InboxLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetUserByID handles GET /admin/users/:id and GET /users/:id
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  handler.UserEnvelope
// @Failure      401  {object}  response.Body
// @Failure      403  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /admin/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "User not found")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, UserEnvelope{User: user})
}

// CreateUser handles POST /admin/users
// @Summary      Create a user
// @Description  Creates a user with an explicit role, hashing the password
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Router       /admin/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "All fields are required", err)
		return
	}

	id, err := h.userService.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "User created successfully", ID: id})
}

// UpdateUser handles PUT /admin/users/:id
// @Summary      Replace a user
// @Description  Full replace of name, email, role and status. Every field must be sent.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Body
// @Failure      400      {object}  response.Body
// @Failure      404      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Router       /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "User not found")
	if !ok {
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "All fields are required", err)
		return
	}

	if err := h.userService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("User updated successfully"))
}

// DeleteUser handles DELETE /admin/users/:id
// @Summary      Soft delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "User not found")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("User deleted successfully"))
}

// ChangePassword handles PUT /users/:id/password
// @Summary      Change a password
// @Description  Owners must send their current password; admins may reset any user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "User ID"
// @Param        payload  body      service.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  response.Body
// @Failure      400      {object}  response.Body
// @Failure      403      {object}  response.Body
// @Router       /users/{id}/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := pathID(c, "User not found")
	if !ok {
		return
	}

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "New password must be at least 6 characters", err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.PrincipalFrom(c), id, req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Password updated successfully"))
}

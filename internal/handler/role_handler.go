package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/rbac"
	"portal/internal/service"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/admin/roles")
	roles.Use(middleware.RequireRole(rbac.UserAdmins))
	{
		roles.GET("", h.ListRoles)
	}
}

// ListRoles returns the fixed roles with the permissions each implies
// @Summary      List roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]service.RoleResponse
// @Failure      401  {object}  response.Body
// @Failure      403  {object}  response.Body
// @Router       /admin/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

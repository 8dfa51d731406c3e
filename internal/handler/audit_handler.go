package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/rbac"
	"portal/internal/service"
	"portal/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/admin/audit-logs")
	group.Use(middleware.RequireRole(rbac.UserAdmins)) // Protect history logs
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists management writes, newest first, with the acting user's name joined in
// @Summary      Get audit logs
// @Description  Who changed which user, product, category, bulletin or contact submission, and when
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Action, e.g. DELETE_PRODUCT"
// @Param        entity_id  query     string  false  "Id of the changed row"
// @Param        limit      query     int     false  "Page size (default 50, max 100)"
// @Param        offset     query     int     false  "Rows to skip"
// @Success      200        {object}  service.AuditLogList
// @Failure      400        {object}  response.Body
// @Failure      401        {object}  response.Body
// @Failure      403        {object}  response.Body
// @Router       /admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	logs, err := h.auditService.List(c.Request.Context(), service.AuditListQuery{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
		Params:   pagination.Parse(c, pagination.InboxLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

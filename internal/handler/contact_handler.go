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

type ContactHandler struct {
	contactService service.ContactService
	limit          gin.HandlerFunc
}

func NewContactHandler(contactService service.ContactService, limit gin.HandlerFunc) *ContactHandler {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	return &ContactHandler{contactService: contactService, limit: limit}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	managers := middleware.RequireRole(rbac.ContactManagers)

	contact := router.Group("/contact")
	{
		contact.POST("", h.limit, h.Submit)
		contact.GET("", managers, h.ListSubmissions)
		contact.PUT("/:id/status", managers, h.UpdateStatus)
		contact.DELETE("/:id", managers, h.DeleteSubmission)
	}
}

// Submit handles POST /contact
// @Summary      Send a contact form message
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ContactRequest  true  "Message"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      429      {object}  response.Body
// @Router       /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "All fields are required", err)
		return
	}

	id, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "Thank you for contacting us. We will get back to you soon.", ID: id})
}

// ListSubmissions handles GET /contact
// @Summary      List contact submissions
// @Tags         contact
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "new, read, replied or archived"
// @Param        limit   query     int     false  "Page size (default 50, max 100)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  service.ContactList
// @Failure      401     {object}  response.Body
// @Failure      403     {object}  response.Body
// @Router       /contact [get]
func (h *ContactHandler) ListSubmissions(c *gin.Context) {
	res, err := h.contactService.List(c.Request.Context(), service.ContactListQuery{
		Status: c.Query("status"),
		Params: pagination.Parse(c, pagination.InboxLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// UpdateStatus handles PUT /contact/:id/status
// @Summary      Set a submission's status
// @Tags         contact
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Submission ID"
// @Param        payload  body      service.ContactStatusRequest  true  "Status"
// @Success      200      {object}  response.Body
// @Failure      400      {object}  response.Body
// @Failure      404      {object}  response.Body
// @Router       /contact/{id}/status [put]
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "Submission not found")
	if !ok {
		return
	}

	var req service.ContactStatusRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.contactService.UpdateStatus(c.Request.Context(), middleware.PrincipalFrom(c), id, req.Status); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Status updated successfully"))
}

// DeleteSubmission handles DELETE /contact/:id
// @Summary      Permanently delete a submission
// @Tags         contact
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /contact/{id} [delete]
func (h *ContactHandler) DeleteSubmission(c *gin.Context) {
	id, ok := pathID(c, "Submission not found")
	if !ok {
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Submission deleted successfully"))
}

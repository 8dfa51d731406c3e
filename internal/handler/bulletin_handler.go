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

type BulletinEnvelope struct {
	Bulletin *service.FullBulletinView `json:"bulletin"`
}

type BulletinHandler struct {
	bulletinService service.BulletinService
}

func NewBulletinHandler(bulletinService service.BulletinService) *BulletinHandler {
	return &BulletinHandler{bulletinService: bulletinService}
}

func (h *BulletinHandler) RegisterRoutes(router *gin.RouterGroup) {
	managers := middleware.RequireRole(rbac.BulletinManagers)

	bulletins := router.Group("/bulletins")
	{
		bulletins.GET("", middleware.RejectInvalidToken(), h.ListBulletins)
		bulletins.GET("/:id", middleware.RequireAuth(), h.GetBulletin)
		bulletins.POST("", managers, h.CreateBulletin)
		bulletins.PUT("/:id", managers, h.UpdateBulletin)
		bulletins.DELETE("/:id", managers, h.DeleteBulletin)
	}
}

// ListBulletins handles GET /bulletins
// @Summary      List bulletins
// @Description  Anonymous callers get the short description only; authenticated callers get the full text
// @Tags         bulletins
// @Produce      json
// @Param        type    query     string  false  "event, hiring or announcement"
// @Param        search  query     string  false  "Substring of title or description"
// @Param        status  query     string  false  "Managers only: a status or 'all'"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  service.BulletinList
// @Failure      400     {object}  response.Body
// @Router       /bulletins [get]
func (h *BulletinHandler) ListBulletins(c *gin.Context) {
	res, err := h.bulletinService.List(c.Request.Context(), middleware.PrincipalFrom(c), service.BulletinListQuery{
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Status: c.Query("status"),
		Params: pagination.Parse(c, pagination.CatalogLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetBulletin handles GET /bulletins/:id
// @Summary      Get bulletin details
// @Tags         bulletins
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Bulletin ID"
// @Success      200  {object}  handler.BulletinEnvelope
// @Failure      401  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /bulletins/{id} [get]
func (h *BulletinHandler) GetBulletin(c *gin.Context) {
	id, ok := pathID(c, "Bulletin not found")
	if !ok {
		return
	}

	bulletin, err := h.bulletinService.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, BulletinEnvelope{Bulletin: bulletin})
}

// CreateBulletin handles POST /bulletins
// @Summary      Create a bulletin
// @Tags         bulletins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BulletinInput  true  "Bulletin"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      403      {object}  response.Body
// @Router       /bulletins [post]
func (h *BulletinHandler) CreateBulletin(c *gin.Context) {
	var in service.BulletinInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, "Type, title, and description are required", err)
		return
	}

	id, err := h.bulletinService.Create(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "Bulletin created successfully", ID: id})
}

// UpdateBulletin handles PUT /bulletins/:id
// @Summary      Replace a bulletin
// @Tags         bulletins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Bulletin ID"
// @Param        payload  body      service.BulletinInput  true  "Bulletin"
// @Success      200      {object}  response.Body
// @Failure      400      {object}  response.Body
// @Failure      404      {object}  response.Body
// @Router       /bulletins/{id} [put]
func (h *BulletinHandler) UpdateBulletin(c *gin.Context) {
	id, ok := pathID(c, "Bulletin not found")
	if !ok {
		return
	}

	var in service.BulletinInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, "Type, title, and description are required", err)
		return
	}

	if err := h.bulletinService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, in); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Bulletin updated successfully"))
}

// DeleteBulletin handles DELETE /bulletins/:id
// @Summary      Soft delete a bulletin
// @Tags         bulletins
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Bulletin ID"
// @Success      200  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /bulletins/{id} [delete]
func (h *BulletinHandler) DeleteBulletin(c *gin.Context) {
	id, ok := pathID(c, "Bulletin not found")
	if !ok {
		return
	}

	if err := h.bulletinService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Bulletin deleted successfully"))
}

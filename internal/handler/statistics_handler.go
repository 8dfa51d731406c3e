package handler

import (
	"net/http"
	"time"

	"portal/internal/apperr"
	"portal/internal/middleware"
	"portal/internal/rbac"
	"portal/internal/service"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/admin/statistics")
	{
		statsGroup.GET("", middleware.RequireRole(rbac.UserAdmins), h.GetStatistics)
	}
}

// @Summary      Get Dashboard Statistics
// @Description  Live users per role and status, products, bulletins and contact submissions per status, rows created in the time range, and stock value
// @Tags         Statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339), default first day of the current month"
// @Param        end_date   query string false "End Date (RFC3339), default now"
// @Success      200 {object} model.DashboardStatistics
// @Failure      400 {object} response.Body "Invalid date format"
// @Failure      401 {object} response.Body
// @Failure      403 {object} response.Body
// @Security     BearerAuth
// @Router       /admin/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	now := time.Now()
	startDate, err := parseDateParam(c, "start_date", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	if err != nil {
		c.Error(err)
		return
	}
	endDate, err := parseDateParam(c, "end_date", now)
	if err != nil {
		c.Error(err)
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseDateParam(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid " + name + " format, expected RFC3339")
	}
	return t, nil
}

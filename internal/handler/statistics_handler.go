package handler

import (
	"net/http"
	"time"

	"vastustructural/internal/middleware"
	"vastustructural/internal/service"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	revenueService    service.RevenueService
	secret            []byte
}

func NewStatisticsHandler(statisticsService service.StatisticsService, revenueService service.RevenueService, secret []byte) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, revenueService: revenueService, secret: secret}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/api/admin/statistics")
	statsGroup.Use(middleware.RequireRole(h.secret, adminRoles...))
	{
		statsGroup.GET("", h.GetStatistics)
		statsGroup.GET("/revenue", h.GetRevenueStatistics)
	}
}

// timeRange reads start_date and end_date (RFC3339). Missing values default to the start
// of defaultFrom's month and now. It writes the 400 response itself and returns ok=false.
func timeRange(c *gin.Context, defaultFrom time.Time) (start, end time.Time, ok bool) {
	now := time.Now()
	start = time.Date(defaultFrom.Year(), defaultFrom.Month(), 1, 0, 0, 0, 0, defaultFrom.Location())
	end = now

	var err error
	if v := c.Query("start_date"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid start_date format, expected RFC3339"))
			return start, end, false
		}
	}
	if v := c.Query("end_date"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid end_date format, expected RFC3339"))
			return start, end, false
		}
	}
	return start, end, true
}

// @Summary      Get Dashboard Statistics
// @Description  Order and revenue totals, projects per status and top plans for orders placed in a time range
// @Tags         Statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339, default start of month)"
// @Param        end_date   query string false "End Date (RFC3339, default now)"
// @Success      200 {object} response.Response{data=model.StatisticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /api/admin/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	// Default to current month if no dates are provided
	startDate, endDate, ok := timeRange(c, time.Now())
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetRevenueStatistics returns collected revenue grouped by period with its GST split
// @Summary      Revenue by period
// @Tags         Statistics
// @Produce      json
// @Param        group_by    query     string  false  "week, month, quarter or year (default month)"
// @Param        start_date  query     string  false  "Start Date (RFC3339, default start of the month a year ago)"
// @Param        end_date    query     string  false  "End Date (RFC3339, default now)"
// @Success      200         {object}  response.Response{data=[]service.RevenueDataPoint}
// @Failure      400         {object}  response.Response
// @Security     BearerAuth
// @Router       /api/admin/statistics/revenue [get]
func (h *StatisticsHandler) GetRevenueStatistics(c *gin.Context) {
	startDate, endDate, ok := timeRange(c, time.Now().AddDate(-1, 0, 0))
	if !ok {
		return
	}

	filter := service.RevenueFilter{
		GroupBy:   c.Query("group_by"),
		StartDate: startDate,
		EndDate:   endDate,
	}
	data, err := h.revenueService.GetRevenueStatistics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

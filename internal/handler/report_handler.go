package handler

import (
	"net/http"
	"time"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/locations/:locationId", middleware.Authenticate())
	{
		reports.GET("/reports/summary", h.GetSummary)
	}
}

// GetSummary returns movement, sales and expense totals for a location
// @Summary      Location summary report
// @Description  Aggregates import/export totals, sale totals, expenses and top moved products over a date range (defaults to the last 30 days)
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        from        query     string  false  "Range start (YYYY-MM-DD)"
// @Param        to          query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=service.LocationSummary}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid 'from' date, expected YYYY-MM-DD"))
			return
		}
		start = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid 'to' date, expected YYYY-MM-DD"))
			return
		}
		// Inclusive end of day
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	actor := middleware.ActorFromContext(c)

	summary, err := h.reportService.GetLocationSummary(c.Request.Context(), actor, c.Param("locationId"), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"storepos/internal/middleware"
	"storepos/internal/model"
	"storepos/internal/service"
	"storepos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/sales", middleware.RequireCapability(model.CapReportsRead), h.GetSalesReport)
	}
}

// parseDate accepts a plain date or an RFC3339 timestamp. A plain end date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// GetSalesReport returns sales, tax and profit totals with the best sellers
// @Summary      Sales and profit report
// @Description  Totals over committed bills, optionally bounded by date, plus top products by quantity sold
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param        end_date   query string false "End date (YYYY-MM-DD or RFC3339)"
// @Param        top        query int    false "Number of top products (default 5)"
// @Success      200 {object} response.Response{data=model.SalesReport}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Router       /api/reports/sales [get]
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	from, err := parseDate(c.Query("start_date"), false)
	if err != nil {
		badRequest(c, "invalid start_date format, expected YYYY-MM-DD or RFC3339")
		return
	}
	to, err := parseDate(c.Query("end_date"), true)
	if err != nil {
		badRequest(c, "invalid end_date format, expected YYYY-MM-DD or RFC3339")
		return
	}
	top, _ := strconv.Atoi(c.DefaultQuery("top", "5"))

	report, err := h.reportService.SalesReport(c.Request.Context(), from, to, top)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

package controllers

import (
	"fmt"
	"net/http"
	"time"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	orders  *services.OrderService
	reports *services.ReportService
}

func NewHistoryController(orders *services.OrderService, reports *services.ReportService) *HistoryController {
	return &HistoryController{orders: orders, reports: reports}
}

func (ctrl *HistoryController) dateRange(c *gin.Context, start, end string) (time.Time, time.Time, bool) {
	from, to, err := services.ParseDateRange(start, end, ctrl.orders.Location(), time.Now())
	if err != nil {
		respondError(c, err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// @Summary Sales history
// @Description Paid orders in a date range, newest first, with total revenue
// @Tags Owner - History
// @Security BearerAuth
// @Produce json
// @Param start_date query string false "YYYY-MM-DD, defaults to today"
// @Param end_date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /owner/history [get]
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	from, to, ok := ctrl.dateRange(c, c.Query("start_date"), c.Query("end_date"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "History retrieved successfully",
		Data:    ctrl.orders.History(from, to),
	})
}

// @Summary Export sales history
// @Description Download the history range as CSV
// @Tags Owner - History
// @Security BearerAuth
// @Produce text/csv
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /owner/history/export [get]
func (ctrl *HistoryController) ExportHistory(c *gin.Context) {
	from, to, ok := ctrl.dateRange(c, c.Query("start_date"), c.Query("end_date"))
	if !ok {
		return
	}

	report := ctrl.orders.History(from, to)
	data, err := ctrl.reports.ExportCSV(report)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ReportFilename(report.Start, report.End)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary Email sales history
// @Description Send the history range as a CSV attachment
// @Tags Owner - History
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.EmailReportRequest true "Recipient and range"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /owner/history/email [post]
func (ctrl *HistoryController) EmailHistory(c *gin.Context) {
	var req models.EmailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	from, to, ok := ctrl.dateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	if err := ctrl.reports.EmailReport(c.Request.Context(), req.To, from, to); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "Failed to send report",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Report sent to " + req.To,
	})
}

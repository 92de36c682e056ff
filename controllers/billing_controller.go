package controllers

import (
	"net/http"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

type BillingController struct {
	orders *services.OrderService
}

func NewBillingController(orders *services.OrderService) *BillingController {
	return &BillingController{orders: orders}
}

// @Summary Active tables
// @Description Tables with completed orders awaiting payment, and the outstanding total
// @Tags Owner - Billing
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /owner/tables [get]
func (ctrl *BillingController) GetTables(c *gin.Context) {
	tables := ctrl.orders.ActiveTables()
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Active tables retrieved successfully",
		Data: gin.H{
			"tables":            tables,
			"outstanding_total": services.OutstandingTotal(tables),
		},
	})
}

// @Summary Settle table
// @Description Mark every pending, preparing and completed order of the table as paid
// @Tags Owner - Billing
// @Security BearerAuth
// @Produce json
// @Param table path string true "Table number"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /owner/tables/{table}/settle [post]
func (ctrl *BillingController) SettleTable(c *gin.Context) {
	result, err := ctrl.orders.SettleTable(c.Request.Context(), c.Param("table"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Table settled successfully"
	if len(result.OrderIDs) == 0 {
		message = "Nothing to settle"
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    result,
	})
}

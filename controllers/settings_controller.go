package controllers

import (
	"net/http"
	"strconv"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	session *services.Session
	orders  *services.OrderService
}

func NewSettingsController(session *services.Session, orders *services.OrderService) *SettingsController {
	return &SettingsController{session: session, orders: orders}
}

func (ctrl *SettingsController) settings() models.SettingsResponse {
	return models.SettingsResponse{
		AutoPrint:     ctrl.session.AutoPrintEnabled(),
		AutoPrintMode: string(ctrl.session.Dispatcher.Mode()),
		Live:          ctrl.orders.Snapshot().Live,
		Timezone:      ctrl.orders.Location().String(),
	}
}

// @Summary Get settings
// @Tags Owner - Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /owner/settings [get]
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Settings retrieved successfully",
		Data:    ctrl.settings(),
	})
}

// @Summary Toggle auto-print
// @Description Turning auto-print on prints the newest order not printed yet
// @Tags Owner - Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AutoPrintRequest true "Toggle"
// @Success 200 {object} models.Response
// @Router /owner/settings/auto-print [patch]
func (ctrl *SettingsController) SetAutoPrint(c *gin.Context) {
	var req models.AutoPrintRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctrl.session.SetAutoPrint(c.Request.Context(), *req.Enabled)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Auto-print updated",
		Data:    ctrl.settings(),
	})
}

// @Summary Operator notifications
// @Description Failed writes and prints since the given notification id
// @Tags Owner - Settings
// @Security BearerAuth
// @Produce json
// @Param after query int false "Last seen notification id"
// @Success 200 {object} models.Response
// @Router /owner/notifications [get]
func (ctrl *SettingsController) GetNotifications(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notifications retrieved successfully",
		Data:    ctrl.session.Notifications.Since(after),
	})
}

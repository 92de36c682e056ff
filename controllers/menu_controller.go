package controllers

import (
	"net/http"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	orders *services.OrderService
}

func NewMenuController(orders *services.OrderService) *MenuController {
	return &MenuController{orders: orders}
}

// @Summary Get menu
// @Description List menu items and the configured tables
// @Tags Menu
// @Produce json
// @Success 200 {object} models.Response
// @Router /menu [get]
func (ctrl *MenuController) GetMenu(c *gin.Context) {
	items, err := ctrl.orders.Menu(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Menu retrieved successfully",
		Data: gin.H{
			"items":  items,
			"tables": ctrl.orders.Tables(),
		},
	})
}

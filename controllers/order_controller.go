package controllers

import (
	"net/http"
	"strings"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// @Summary Create order
// @Description Submit an order for a table. Prices are taken from the menu.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// @Summary List orders
// @Description Orders from the live projection, optionally filtered by a comma separated status list
// @Tags Owner - Orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} models.Response
// @Router /owner/orders [get]
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	statuses := []models.OrderStatus{}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.OrderStatus(strings.TrimSpace(s))
			if !status.Valid() {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Success: false,
					Message: "Invalid status filter",
					Error:   string(status),
				})
				return
			}
			statuses = append(statuses, status)
		}
	}

	snap := ctrl.orders.Snapshot()
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Orders retrieved successfully",
		Data: gin.H{
			"orders":     services.FilterByStatus(snap.Orders, statuses...),
			"live":       snap.Live,
			"updated_at": snap.UpdatedAt,
		},
	})
}

// @Summary Kitchen queue
// @Description Pending orders oldest first, and orders being prepared
// @Tags Owner - Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /owner/kitchen [get]
func (ctrl *OrderController) GetKitchen(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Kitchen queue retrieved successfully",
		Data:    ctrl.orders.KitchenQueue(),
	})
}

// @Summary Update order status
// @Description Move an order along pending, preparing, completed or cancel it
// @Tags Owner - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /owner/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid status",
			Error:   string(req.Status),
		})
		return
	}

	order, err := ctrl.orders.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    order,
	})
}

// @Summary Delete order
// @Tags Owner - Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /owner/orders/{id} [delete]
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	if err := ctrl.orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order deleted successfully",
	})
}

// @Summary Print order
// @Description Send an order ticket to the printer
// @Tags Owner - Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 202 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /owner/orders/{id}/print [post]
func (ctrl *OrderController) PrintOrder(c *gin.Context) {
	if err := ctrl.orders.PrintOrder(c.Request.Context(), c.Param("id")); err != nil {
		if isNotFound(err) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "Printer did not accept the ticket",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, models.Response{
		Success: true,
		Message: "Print job sent",
	})
}

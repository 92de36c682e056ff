package controllers

import (
	"errors"
	"net/http"

	"snack-shop/models"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes and the error envelope.
func respondError(c *gin.Context, err error) {
	var partial *models.PartialSettlementError
	switch {
	case errors.As(err, &partial):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Table was only partly settled, retry to settle the rest",
			Error:   err.Error(),
			Details: gin.H{
				"table_number": partial.TableNumber,
				"settled":      partial.Settled,
				"failed":       partial.FailedIDs(),
			},
		})
	case errors.Is(err, models.ErrIllegalTransition):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Status change not allowed",
			Error:   err.Error(),
		})
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Message: "Order not found",
		})
	case errors.Is(err, models.ErrOrderBilled):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Paid orders cannot be deleted",
			Error:   err.Error(),
		})
	case errors.Is(err, models.ErrStaleStatus):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Order was changed by someone else, refresh and retry",
			Error:   err.Error(),
		})
	case errors.Is(err, models.ErrWriteFailed):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "Order store did not accept the change",
			Error:   err.Error(),
		})
	case errors.Is(err, models.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request",
			Error:   err.Error(),
		})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Message: "Invalid passcode",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Internal server error",
			Error:   err.Error(),
		})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request body",
		Error:   err.Error(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrOrderNotFound)
}

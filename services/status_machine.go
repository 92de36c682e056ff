package services

import "snack-shop/models"

// allowedTransitions lists the single-order moves staff can make.
// paid is only reachable through table settlement.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing: {models.StatusCompleted, models.StatusCancelled},
}

func ValidateTransition(orderID string, from, to models.OrderStatus) error {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &models.TransitionError{OrderID: orderID, From: from, To: to}
}

// CanSettle reports whether settlement may move an order in this status to paid.
func CanSettle(status models.OrderStatus) bool {
	switch status {
	case models.StatusPending, models.StatusPreparing, models.StatusCompleted:
		return true
	}
	return false
}

func ValidateSettlement(orderID string, from models.OrderStatus) error {
	if CanSettle(from) {
		return nil
	}
	return &models.TransitionError{OrderID: orderID, From: from, To: models.StatusPaid}
}

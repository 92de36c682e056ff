package services

import (
	"errors"
	"testing"

	"snack-shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	all := []models.OrderStatus{
		models.StatusPending,
		models.StatusPreparing,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusPaid,
	}
	legal := map[[2]models.OrderStatus]bool{
		{models.StatusPending, models.StatusPreparing}:   true,
		{models.StatusPending, models.StatusCancelled}:   true,
		{models.StatusPreparing, models.StatusCompleted}: true,
		{models.StatusPreparing, models.StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			err := ValidateTransition("o1", from, to)
			if legal[[2]models.OrderStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, errors.Is(err, models.ErrIllegalTransition))

			var te *models.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, from, te.From)
			assert.Equal(t, to, te.To)
		}
	}
}

func TestValidateSettlement(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		ok   bool
	}{
		{models.StatusPending, true},
		{models.StatusPreparing, true},
		{models.StatusCompleted, true},
		{models.StatusCancelled, false},
		{models.StatusPaid, false},
		{models.OrderStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			err := ValidateSettlement("o1", tt.from)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, models.ErrIllegalTransition)
			}
		})
	}
}

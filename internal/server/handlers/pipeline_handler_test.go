package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: models.Validationf("bad"), want: http.StatusUnprocessableEntity},
		{name: "capacity", err: allocation.CapacityError(models.MachineSetter, 10, 5), want: http.StatusUnprocessableEntity},
		{name: "insufficient stock", err: fmt.Errorf("scrap: %w", &models.InsufficientStockError{Requested: 5, Available: 1}), want: http.StatusConflict},
		{name: "configuration", err: models.Configurationf("missing"), want: http.StatusServiceUnavailable},
		{name: "consistency", err: models.Consistencyf("broken"), want: http.StatusConflict},
		{name: "not found", err: models.NotFoundf("batch 1"), want: http.StatusNotFound},
		{name: "other", err: errors.New("ledger offline"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

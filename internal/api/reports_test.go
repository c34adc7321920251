package api

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medshop/m/domain"
)

func TestReports(t *testing.T) {
	s := newTestServer(t, true)

	t.Run("sales", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/reports/sales", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rows := decode[[]domain.DailySales](t, rec)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-10-12", rows[0].SaleDate)
		assert.True(t, decimal.NewFromInt(100).Equal(rows[0].TotalRevenue))
		assert.Equal(t, "2025-10-10", rows[1].SaleDate)

		rec = s.do(t, http.MethodGet, "/reports/sales?startDate=2025-10-11", nil, nil)
		assert.Len(t, decode[[]domain.DailySales](t, rec), 1)

		rec = s.do(t, http.MethodGet, "/reports/sales?endDate=tomorrow", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("top medicines", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/reports/top-medicines", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rows := decode[[]domain.TopMedicine](t, rec)
		require.Len(t, rows, 2)
		assert.Equal(t, "Paracetamol", rows[0].ItemName)
		assert.Equal(t, int64(5), rows[0].TotalSold)

		rec = s.do(t, http.MethodGet, "/reports/top-medicines?limit=1", nil, nil)
		assert.Len(t, decode[[]domain.TopMedicine](t, rec), 1)

		rec = s.do(t, http.MethodGet, "/reports/top-medicines?limit=0", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("buyer stats", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/reports/buyer-stats", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rows := decode[[]domain.BuyerStats](t, rec)
		require.Len(t, rows, 2)
		// equal spend, lower buyer id first
		assert.Equal(t, "Rohan Patil", rows[0].BuyerName)
		assert.Equal(t, int64(2), rows[0].TotalItems)
		assert.True(t, decimal.NewFromInt(100).Equal(rows[0].TotalSpent))
		assert.Equal(t, "Sneha Shah", rows[1].BuyerName)
		assert.True(t, decimal.NewFromInt(100).Equal(rows[1].TotalSpent))
	})
}

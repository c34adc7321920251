package api

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medshop/m/domain"
)

func TestSupplierMutationsRequireOwner(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/suppliers", map[string]any{"name": "Acme"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, "/suppliers/1", map[string]any{"name": "Acme"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/suppliers/1", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPost, "/suppliedby", map[string]any{"supplierId": 1, "itemId": 1}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/suppliedby/1", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/suppliers", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSupplierLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/suppliers", map[string]any{"name": "Cipla Distributors", "phone": "020-555"}, owner())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	supplierID := decode[createdResponse](t, rec).ID

	rec = s.do(t, http.MethodPut, "/suppliers/"+itoa(supplierID), map[string]any{"name": "Cipla Ltd", "email": "orders@cipla.example"}, owner())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Supplier updated", decode[affectedResponse](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/suppliers/"+itoa(supplierID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sup := decode[domain.Supplier](t, rec)
	assert.Equal(t, "Cipla Ltd", sup.Name)
	assert.Nil(t, sup.Phone)

	rec = s.do(t, http.MethodPost, "/suppliedby", map[string]any{"supplierId": supplierID, "itemId": 3, "supplyPrice": "11.25"}, owner())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	linkID := decode[createdResponse](t, rec).ID

	rec = s.do(t, http.MethodGet, "/suppliedby/"+itoa(supplierID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	supplied := decode[[]domain.SuppliedItem](t, rec)
	require.Len(t, supplied, 1)
	assert.Equal(t, "Cetrizine", supplied[0].ItemName)
	assert.True(t, decimal.RequireFromString("11.25").Equal(supplied[0].SupplyPrice))

	rec = s.do(t, http.MethodPost, "/suppliedby", map[string]any{"supplierId": supplierID, "itemId": 99}, owner())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/suppliedby", map[string]any{"supplierId": 99, "itemId": 1}, owner())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/suppliedby", map[string]any{"itemId": 1}, owner())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/suppliedby/"+itoa(linkID), nil, owner())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Link removed", decode[affectedResponse](t, rec).Message)
	rec = s.do(t, http.MethodDelete, "/suppliedby/"+itoa(linkID), nil, owner())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/suppliers/"+itoa(supplierID), nil, owner())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[affectedResponse](t, rec).AffectedRows)

	rec = s.do(t, http.MethodPut, "/suppliers/"+itoa(supplierID), map[string]any{"name": "Gone"}, owner())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Supplier not found", errorMessage(t, rec))
}

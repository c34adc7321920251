package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medshop/m/domain"
	"medshop/m/internal/database"
	"medshop/m/internal/migrations"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "shop.db"))
	db, err := database.Connect(database.DriverSQLite, dsn, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db, dsn))
	return db
}

func strPtr(s string) *string { return &s }

func createItem(t *testing.T, items *ItemStore, name string, price string, stock int64) int64 {
	t.Helper()
	id, err := items.Create(context.Background(), &domain.Item{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		StockQty:     stock,
		ReorderLevel: 5,
	})
	require.NoError(t, err)
	return id
}

func TestItemStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)

	t.Run("create and get", func(t *testing.T) {
		id, err := items.Create(ctx, &domain.Item{
			Name:         "Paracetamol",
			Type:         strPtr("Tablet"),
			Price:        decimal.RequireFromString("20.50"),
			ExpiryDate:   strPtr("2026-12-31"),
			StockQty:     100,
			ReorderLevel: 10,
		})
		require.NoError(t, err)

		item, err := items.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Paracetamol", item.Name)
		assert.Equal(t, "Tablet", *item.Type)
		assert.True(t, decimal.RequireFromString("20.5").Equal(item.Price))
		assert.Equal(t, "2026-12-31", *item.ExpiryDate)
		assert.Equal(t, int64(100), item.StockQty)
		assert.Nil(t, item.SupplierID)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		item, err := items.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("set stock", func(t *testing.T) {
		id := createItem(t, items, "Crocin", "25", 90)
		n, err := items.SetStock(ctx, id, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		qty, found, err := items.StockQty(ctx, id)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(40), qty)

		n, err = items.SetStock(ctx, 9999, 40)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestItemStoreDecrementStock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)
	id := createItem(t, items, "Savlon", "60", 25)

	ok, err := items.DecrementStock(ctx, id, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = items.DecrementStock(ctx, id, 25)
	require.NoError(t, err)
	assert.True(t, ok)

	qty, found, err := items.StockQty(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, qty)

	ok, err = items.DecrementStock(ctx, 9999, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err = items.StockQty(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestItemStoreLowStock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)

	createItem(t, items, "Plenty", "10", 100)
	createItem(t, items, "AtLevel", "10", 5)
	createItem(t, items, "Empty", "10", 0)

	low, err := items.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Empty", low[0].Name)
	assert.Equal(t, "AtLevel", low[1].Name)
}

func TestBuyerStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	buyers := NewBuyerStore(db)

	id, err := buyers.Create(ctx, "Rohan Patil", strPtr("9876543210"), nil)
	require.NoError(t, err)

	buyer, err := buyers.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, buyer)
	assert.Equal(t, "Rohan Patil", buyer.Name)
	assert.Equal(t, "9876543210", *buyer.Phone)
	assert.Nil(t, buyer.Address)

	all, err := buyers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	missing, err := buyers.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPurchaseStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)
	buyers := NewBuyerStore(db)
	purchases := NewPurchaseStore(db)

	amox := createItem(t, items, "Amoxicillin", "50", 80)
	para := createItem(t, items, "Paracetamol", "20", 100)
	rohan, err := buyers.Create(ctx, "Rohan Patil", nil, nil)
	require.NoError(t, err)
	sneha, err := buyers.Create(ctx, "Sneha Shah", nil, nil)
	require.NoError(t, err)

	first, err := purchases.Create(ctx, &domain.Purchase{BuyerID: rohan, ItemID: amox, Quantity: 2, PurchaseDate: time.Date(2025, 10, 10, 9, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = purchases.Create(ctx, &domain.Purchase{BuyerID: sneha, ItemID: para, Quantity: 5, PurchaseDate: time.Date(2025, 10, 12, 14, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	t.Run("detail", func(t *testing.T) {
		detail, err := purchases.GetByID(ctx, first)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, "Rohan Patil", detail.BuyerName)
		assert.Equal(t, "Amoxicillin", detail.ItemName)
		assert.Equal(t, int64(2), detail.Quantity)
		assert.True(t, decimal.NewFromInt(100).Equal(detail.TotalAmount))
		assert.Equal(t, time.Date(2025, 10, 10, 9, 30, 0, 0, time.UTC), detail.PurchaseDate.UTC())
	})

	t.Run("missing", func(t *testing.T) {
		detail, err := purchases.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, detail)
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := purchases.List(ctx, PurchaseFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Sneha Shah", all[0].BuyerName)
		assert.Equal(t, "Rohan Patil", all[1].BuyerName)
	})

	t.Run("filters", func(t *testing.T) {
		byBuyer, err := purchases.List(ctx, PurchaseFilter{BuyerID: rohan})
		require.NoError(t, err)
		require.Len(t, byBuyer, 1)
		assert.Equal(t, amox, byBuyer[0].ItemID)

		byItem, err := purchases.List(ctx, PurchaseFilter{ItemID: para})
		require.NoError(t, err)
		require.Len(t, byItem, 1)

		byDate, err := purchases.List(ctx, PurchaseFilter{StartDate: "2025-10-11", EndDate: "2025-10-12"})
		require.NoError(t, err)
		require.Len(t, byDate, 1)
		assert.Equal(t, "Sneha Shah", byDate[0].BuyerName)

		none, err := purchases.List(ctx, PurchaseFilter{StartDate: "2026-01-01"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestPurchaseStoreWithTxRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)
	buyers := NewBuyerStore(db)
	id := createItem(t, items, "Dolo 650", "35", 10)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	buyerID, err := buyers.WithTx(tx).Create(ctx, "Walk-in", nil, nil)
	require.NoError(t, err)
	ok, err := items.WithTx(tx).DecrementStock(ctx, id, 3)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = NewPurchaseStore(db).WithTx(tx).Create(ctx, &domain.Purchase{BuyerID: buyerID, ItemID: id, Quantity: 3, PurchaseDate: time.Now()})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	qty, _, err := items.StockQty(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)

	all, err := buyers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSupplierStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	suppliers := NewSupplierStore(db)
	items := NewItemStore(db)

	id, err := suppliers.Create(ctx, &domain.Supplier{Name: "Cipla Distributors", Phone: strPtr("020-555")})
	require.NoError(t, err)

	sup, err := suppliers.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sup)
	assert.Equal(t, "Cipla Distributors", sup.Name)

	sup.Email = strPtr("orders@cipla.example")
	n, err := suppliers.Update(ctx, sup)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	itemID := createItem(t, items, "Cetrizine", "15", 60)
	linkID, err := suppliers.Link(ctx, &domain.SuppliedBy{SupplierID: id, ItemID: itemID, SupplyPrice: decimal.RequireFromString("11.25")})
	require.NoError(t, err)

	supplied, err := suppliers.ListSupplied(ctx, id)
	require.NoError(t, err)
	require.Len(t, supplied, 1)
	assert.Equal(t, linkID, supplied[0].ID)
	assert.Equal(t, "Cetrizine", supplied[0].ItemName)
	assert.True(t, decimal.RequireFromString("11.25").Equal(supplied[0].SupplyPrice))

	n, err = suppliers.Unlink(ctx, linkID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = suppliers.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = suppliers.Delete(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSupplierDeleteKeepsItems(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	suppliers := NewSupplierStore(db)
	items := NewItemStore(db)

	supID, err := suppliers.Create(ctx, &domain.Supplier{Name: "Acme"})
	require.NoError(t, err)
	itemID, err := items.Create(ctx, &domain.Item{Name: "ORS", StockQty: 120, ReorderLevel: 5, SupplierID: &supID})
	require.NoError(t, err)

	_, err = suppliers.Delete(ctx, supID)
	require.NoError(t, err)

	item, err := items.GetByID(ctx, itemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.SupplierID)
	assert.Equal(t, int64(120), item.StockQty)
}

func TestClinicStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	clinic := NewClinicStore(db)

	doctorID, err := clinic.CreateDoctor(ctx, &domain.Doctor{Name: "Dr. Mehta", Specialization: strPtr("General")})
	require.NoError(t, err)
	age := int64(34)
	patientID, err := clinic.CreatePatient(ctx, &domain.Patient{Name: "Anil Kumar", Age: &age})
	require.NoError(t, err)

	_, err = clinic.CreateConsultation(ctx, &domain.Consultation{DoctorID: doctorID, PatientID: patientID, Date: strPtr("2025-10-01"), Diagnosis: strPtr("Fever")})
	require.NoError(t, err)
	laterID, err := clinic.CreateConsultation(ctx, &domain.Consultation{DoctorID: doctorID, PatientID: patientID, Date: strPtr("2025-10-05")})
	require.NoError(t, err)
	undatedID, err := clinic.CreateConsultation(ctx, &domain.Consultation{DoctorID: doctorID, PatientID: patientID, Diagnosis: strPtr("Follow-up")})
	require.NoError(t, err)

	consultations, err := clinic.ListConsultations(ctx)
	require.NoError(t, err)
	require.Len(t, consultations, 3)
	assert.Equal(t, laterID, consultations[0].ConsultationID)
	assert.Equal(t, undatedID, consultations[2].ConsultationID)
	assert.Nil(t, consultations[2].Date)
	assert.Equal(t, "Dr. Mehta", consultations[0].DoctorName)
	assert.Equal(t, "Anil Kumar", consultations[0].PatientName)

	patient, err := clinic.GetPatient(ctx, patientID)
	require.NoError(t, err)
	require.NotNil(t, patient)
	assert.Equal(t, int64(34), *patient.Age)

	patient.Contact = strPtr("99999")
	n, err := clinic.UpdatePatient(ctx, patient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = clinic.DeleteDoctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	consultations, err = clinic.ListConsultations(ctx)
	require.NoError(t, err)
	assert.Empty(t, consultations)

	doctor, err := clinic.GetDoctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Nil(t, doctor)
}

func TestReportStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewItemStore(db)
	buyers := NewBuyerStore(db)
	purchases := NewPurchaseStore(db)
	reports := NewReportStore(db)

	para := createItem(t, items, "Paracetamol", "20", 100)
	amox := createItem(t, items, "Amoxicillin", "50", 80)
	createItem(t, items, "Unsold", "5", 10)
	rohan, err := buyers.Create(ctx, "Rohan Patil", nil, nil)
	require.NoError(t, err)
	sneha, err := buyers.Create(ctx, "Sneha Shah", nil, nil)
	require.NoError(t, err)
	_, err = buyers.Create(ctx, "Never Bought", nil, nil)
	require.NoError(t, err)

	day1 := time.Date(2025, 10, 10, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	_, err = purchases.Create(ctx, &domain.Purchase{BuyerID: rohan, ItemID: amox, Quantity: 2, PurchaseDate: day1})
	require.NoError(t, err)
	_, err = purchases.Create(ctx, &domain.Purchase{BuyerID: sneha, ItemID: para, Quantity: 5, PurchaseDate: day2})
	require.NoError(t, err)
	_, err = purchases.Create(ctx, &domain.Purchase{BuyerID: rohan, ItemID: para, Quantity: 1, PurchaseDate: day2})
	require.NoError(t, err)

	t.Run("daily sales", func(t *testing.T) {
		sales, err := reports.DailySales(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, "2025-10-12", sales[0].SaleDate)
		assert.Equal(t, int64(2), sales[0].TotalPurchases)
		assert.Equal(t, int64(6), sales[0].TotalQuantity)
		assert.True(t, decimal.NewFromInt(120).Equal(sales[0].TotalRevenue))
		assert.Equal(t, int64(2), sales[0].UniqueBuyers)
		assert.Equal(t, "2025-10-10", sales[1].SaleDate)

		ranged, err := reports.DailySales(ctx, "2025-10-09", "2025-10-11")
		require.NoError(t, err)
		require.Len(t, ranged, 1)
		assert.True(t, decimal.NewFromInt(100).Equal(ranged[0].TotalRevenue))
	})

	t.Run("top medicines", func(t *testing.T) {
		top, err := reports.TopMedicines(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Paracetamol", top[0].ItemName)
		assert.Equal(t, int64(6), top[0].TotalSold)

		one, err := reports.TopMedicines(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, one, 1)
	})

	t.Run("buyer stats", func(t *testing.T) {
		stats, err := reports.BuyerStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "Rohan Patil", stats[0].BuyerName)
		assert.Equal(t, int64(2), stats[0].TotalPurchases)
		assert.Equal(t, int64(3), stats[0].TotalItems)
		assert.True(t, decimal.NewFromInt(120).Equal(stats[0].TotalSpent))
		assert.True(t, decimal.NewFromInt(100).Equal(stats[1].TotalSpent))
	})
}

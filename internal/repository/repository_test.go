package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-shoeroom/internal/model"
	"go-shoeroom/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestProduct(sku, name, category string, sizes ...model.SizeStock) *model.Product {
	p := &model.Product{
		SKU:      sku,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(100),
		Discount: 10,
	}
	p.ReplaceSizes(sizes)
	return p
}

func TestProductRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	p := newTestProduct("NK-AM-001", "Air Max", "Nike", model.SizeStock{Size: "10", Quantity: 2}, model.SizeStock{Size: "9", Quantity: 5})
	require.NoError(t, repo.Create(ctx, p))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Air Max", found.Name)
		assert.Equal(t, []model.SizeStock{{Size: "9", Quantity: 5}, {Size: "10", Quantity: 2}}, []model.SizeStock(found.Sizes))
		assert.Equal(t, []string{"9", "10"}, []string(found.Talle))
		assert.Equal(t, 7, found.Stock)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("by sku", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, "NK-AM-001")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
	})

	t.Run("by name", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "Air Max")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindBySKU(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProductRepo_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestProduct("NK-AM-001", "Air Max", "Nike")))
	err := repo.Create(ctx, newTestProduct("NK-AM-001", "Air Max 2", "Nike"))

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, IsUniqueViolation(err))
}

func TestProductRepo_CountByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestProduct("NK-AM-001", "Air Max", "Nike")))
	require.NoError(t, repo.Create(ctx, newTestProduct("NK-AF1-002", "Air Force 1", "Nike")))
	require.NoError(t, repo.Create(ctx, newTestProduct("ADI-S-001", "Superstar", "Adidas")))

	n, err := repo.CountByCategory(ctx, "Nike")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductRepo_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	p := newTestProduct("VNS-OS-001", "Old Skool", "Vans", model.SizeStock{Size: "40", Quantity: 3})
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, p.AdjustStock("40", -1))
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindBySKU(ctx, "VNS-OS-001")
	require.NoError(t, err)
	assert.Equal(t, 2, found.Stock)

	deleted, err := repo.DeleteBySKU(ctx, "VNS-OS-001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = repo.DeleteBySKU(ctx, "VNS-OS-001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func createInvoice(t *testing.T, repo InvoiceRepository, number string, seq int64, items ...model.InvoiceItem) *model.Invoice {
	t.Helper()
	inv := &model.Invoice{InvoiceNumber: number, Sequence: seq, Items: items, TotalAmount: decimal.NewFromInt(90)}
	require.NoError(t, repo.Create(context.Background(), inv))
	return inv
}

func TestInvoiceRepo_FindAllNewestFirstWithRefs(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := NewProductRepo(db)
	invoices := NewInvoiceRepo(db)

	p := newTestProduct("NK-AM-001", "Air Max", "Nike", model.SizeStock{Size: "9", Quantity: 5})
	require.NoError(t, products.Create(ctx, p))

	createInvoice(t, invoices, "FAC-1001", 1001,
		model.InvoiceItem{ProductID: p.ID, ProductName: "Air Max", Size: "9", Quantity: 1, Price: decimal.NewFromInt(90)},
	)
	createInvoice(t, invoices, "FAC-1002", 1002,
		model.InvoiceItem{ProductID: p.ID, ProductName: "Air Max", Size: "9", Quantity: 2, Price: decimal.NewFromInt(90)},
		model.InvoiceItem{ProductID: p.ID, ProductName: "Air Max", Size: "10", Quantity: 1, Price: decimal.NewFromInt(80)},
	)

	all, err := invoices.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FAC-1002", all[0].InvoiceNumber)
	require.Len(t, all[0].Items, 2)
	assert.Equal(t, "9", all[0].Items[0].Size)
	assert.Equal(t, "10", all[0].Items[1].Size)
	require.NotNil(t, all[0].Items[0].Product)
	assert.Equal(t, "NK-AM-001", all[0].Items[0].Product.SKU)

	latest, err := invoices.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FAC-1002", latest.InvoiceNumber)
}

func TestInvoiceRepo_DuplicateNumber(t *testing.T) {
	invoices := NewInvoiceRepo(setupTestDB(t))
	createInvoice(t, invoices, "FAC-1001", 1001)

	err := invoices.Create(context.Background(), &model.Invoice{InvoiceNumber: "FAC-1001", Sequence: 1001, TotalAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestInvoiceRepo_DeleteAllResetsSequence(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	invoices := NewInvoiceRepo(db)
	seqs := NewSequenceRepo(db)

	_, err := seqs.Next(ctx, InvoiceSequenceName, func(context.Context) (int64, error) { return 1000, nil })
	require.NoError(t, err)
	createInvoice(t, invoices, "FAC-1001", 1001, model.InvoiceItem{ProductName: "x", Size: "9", Quantity: 1, Price: decimal.NewFromInt(1)})
	createInvoice(t, invoices, "FAC-1002", 1002)

	n, err := invoices.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var items int64
	require.NoError(t, db.Model(&model.InvoiceItem{}).Count(&items).Error)
	assert.Zero(t, items)

	var seqRows int64
	require.NoError(t, db.Model(&model.InvoiceSequence{}).Count(&seqRows).Error)
	assert.Zero(t, seqRows)

	_, err = invoices.FindLatest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSequenceRepo_SeedsThenIncrements(t *testing.T) {
	ctx := context.Background()
	seqs := NewSequenceRepo(setupTestDB(t))
	seeded := 0
	seed := func(context.Context) (int64, error) {
		seeded++
		return 1007, nil
	}

	first, err := seqs.Next(ctx, InvoiceSequenceName, seed)
	require.NoError(t, err)
	second, err := seqs.Next(ctx, InvoiceSequenceName, seed)
	require.NoError(t, err)

	assert.Equal(t, int64(1008), first)
	assert.Equal(t, int64(1009), second)
	assert.Equal(t, 1, seeded)
}

func TestSequenceRepo_SeedError(t *testing.T) {
	seqs := NewSequenceRepo(setupTestDB(t))
	boom := errors.New("boom")

	_, err := seqs.Next(context.Background(), InvoiceSequenceName, func(context.Context) (int64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestDashboardRepo(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := NewProductRepo(db)
	invoices := NewInvoiceRepo(db)

	require.NoError(t, products.Create(ctx, newTestProduct("A-1", "A", "Nike", model.SizeStock{Size: "9", Quantity: 3})))
	require.NoError(t, products.Create(ctx, newTestProduct("B-1", "B", "Nike", model.SizeStock{Size: "9", Quantity: 20})))
	createInvoice(t, invoices, "FAC-1001", 1001,
		model.InvoiceItem{ProductName: "A", Size: "9", Quantity: 2, Price: decimal.NewFromInt(90)},
	)

	dash := NewDashboardRepo(db)
	stats, err := dash.GetDashboardStats(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, "2300", stats.TotalValuation.String())
	assert.Equal(t, int64(1), stats.InvoiceCount)
	assert.Equal(t, "90", stats.InvoicedAmount.String())

	now := time.Now()
	sales, err := dash.GetSalesByDay(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 2, sales[0].Units)
	assert.Equal(t, "180", sales[0].Revenue.String())
}

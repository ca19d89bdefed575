package service

import (
	"context"
	"testing"

	"go-shoeroom/internal/apperror"
	"go-shoeroom/internal/model"
	"go-shoeroom/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appErr(t *testing.T, err error) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	var e *apperror.Error
	require.ErrorAs(t, err, &e)
	return e
}

func TestCreateInvoice_SellOutThenInsufficient(t *testing.T) {
	for name, newUOW := range unitsOfWork {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := setupTestEnv(t, newUOW)
			p := env.createAirMax(t)

			req := &CreateInvoiceRequest{
				Items:       []InvoiceItemRequest{{Product: p.ID.String(), Size: "9", Quantity: 5}},
				TotalAmount: dec("450"),
			}

			inv, err := env.invoices.CreateInvoice(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, "FAC-1001", inv.InvoiceNumber)
			require.Len(t, inv.Items, 1)
			assert.Equal(t, "90", inv.Items[0].Price.String())
			assert.Equal(t, "Air Max", inv.Items[0].ProductName)
			assert.Equal(t, 0, env.stockOf(t, p.SKU, "9"))

			_, err = env.invoices.CreateInvoice(ctx, req)
			e := appErr(t, err)
			assert.Equal(t, apperror.CodeInsufficientStock, e.Code)
			assert.Equal(t, 400, e.Status())
			assert.Equal(t, 0, e.Details["available"])
			assert.Equal(t, 5, e.Details["requested"])
			assert.Equal(t, int64(1), env.invoiceCount(t))
		})
	}
}

func TestCreateInvoice_SecondItemFailsLeavesNoTrace(t *testing.T) {
	for name, newUOW := range unitsOfWork {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := setupTestEnv(t, newUOW)
			airMax := env.createAirMax(t)
			vans, err := env.products.CreateProduct(ctx, &CreateProductRequest{
				Name:     "Old Skool",
				Category: "Vans",
				Price:    dec("70"),
				Sizes:    []model.SizeStock{{Size: "40", Quantity: 1}},
			})
			require.NoError(t, err)

			_, err = env.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
				Items: []InvoiceItemRequest{
					{ProductSKU: airMax.SKU, Size: "9", Quantity: 2},
					{ProductSKU: vans.SKU, Size: "40", Quantity: 3},
				},
				TotalAmount: dec("390"),
			})

			assert.Equal(t, apperror.CodeInsufficientStock, apperror.CodeOf(err))
			assert.Equal(t, 5, env.stockOf(t, airMax.SKU, "9"))
			assert.Equal(t, 1, env.stockOf(t, vans.SKU, "40"))
			assert.Zero(t, env.invoiceCount(t))
		})
	}
}

func TestCreateInvoice_SameSizeTwiceSeesEarlierLine(t *testing.T) {
	for name, newUOW := range unitsOfWork {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := setupTestEnv(t, newUOW)
			p := env.createAirMax(t)

			_, err := env.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
				Items: []InvoiceItemRequest{
					{ProductSKU: p.SKU, Size: "9", Quantity: 3},
					{ProductSKU: p.SKU, Size: "9", Quantity: 3},
				},
				TotalAmount: dec("540"),
			})

			e := appErr(t, err)
			assert.Equal(t, apperror.CodeInsufficientStock, e.Code)
			assert.Equal(t, 2, e.Details["available"])
			assert.Equal(t, 5, env.stockOf(t, p.SKU, "9"))
		})
	}
}

func TestCreateInvoice_Numbering(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p, err := env.products.CreateProduct(ctx, &CreateProductRequest{
		Name:     "Superstar",
		Category: "Adidas",
		Price:    dec("80"),
		Sizes:    []model.SizeStock{{Size: "42", Quantity: 10}},
	})
	require.NoError(t, err)

	// An existing data set that already reached FAC-1007.
	require.NoError(t, repository.NewInvoiceRepo(env.db).Create(ctx, &model.Invoice{
		InvoiceNumber: "FAC-1007",
		Sequence:      1007,
		TotalAmount:   decimal.NewFromInt(1),
	}))

	req := &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{ProductName: "Superstar", Size: "42", Quantity: 1}},
		TotalAmount: dec("80"),
	}
	first, err := env.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)
	second, err := env.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "FAC-1008", first.InvoiceNumber)
	assert.Equal(t, "FAC-1009", second.InvoiceNumber)
	assert.Equal(t, 8, env.stockOf(t, p.SKU, "42"))

	n, err := env.invoices.DeleteAllInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	restarted, err := env.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "FAC-1001", restarted.InvoiceNumber)
}

func TestCreateInvoice_ProductNotFound(t *testing.T) {
	env := setupTestEnv(t, repository.NewGormUnitOfWork)

	_, err := env.invoices.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{Product: "not-a-uuid", ProductSKU: "NK-XX-999", Size: "9", Quantity: 1}},
		TotalAmount: dec("10"),
	})

	e := appErr(t, err)
	assert.Equal(t, apperror.CodeProductNotFound, e.Code)
	assert.Equal(t, 404, e.Status())
	assert.Contains(t, e.Message, "sku: NK-XX-999")
	assert.Contains(t, e.Message, "name: N/A")
}

func TestCreateInvoice_SizeNotAvailable(t *testing.T) {
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p := env.createAirMax(t)

	_, err := env.invoices.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{ProductSKU: p.SKU, Size: "11", Quantity: 1}},
		TotalAmount: dec("90"),
	})

	e := appErr(t, err)
	assert.Equal(t, apperror.CodeSizeNotAvailable, e.Code)
	assert.Equal(t, []string{"9"}, e.Details["availableSizes"])
	assert.Zero(t, env.invoiceCount(t))
}

func TestCreateInvoice_LookupFallsThroughToSKU(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p := env.createAirMax(t)

	inv, err := env.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{Product: "not-a-uuid", ProductSKU: p.SKU, Size: "9", Quantity: 1, Price: dec("75.50")}},
		TotalAmount: dec("75.50"),
	})

	require.NoError(t, err)
	assert.Equal(t, p.ID, inv.Items[0].ProductID)
	assert.Equal(t, "75.5", inv.Items[0].Price.String())
}

func TestCreateInvoice_ZeroItemPriceFallsBackToProductPrice(t *testing.T) {
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p := env.createAirMax(t)

	inv, err := env.invoices.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{ProductName: p.Name, Size: "9", Quantity: 2, Price: dec("0")}},
		TotalAmount: dec("1"),
	})

	require.NoError(t, err)
	assert.Equal(t, "90", inv.Items[0].Price.String())
}

func TestCreateInvoice_InvalidRequests(t *testing.T) {
	env := setupTestEnv(t, repository.NewGormUnitOfWork)

	tests := []struct {
		name string
		req  *CreateInvoiceRequest
	}{
		{"no items", &CreateInvoiceRequest{TotalAmount: dec("10")}},
		{"no total", &CreateInvoiceRequest{Items: []InvoiceItemRequest{{ProductSKU: "A", Size: "9", Quantity: 1}}}},
		{"zero quantity", &CreateInvoiceRequest{Items: []InvoiceItemRequest{{ProductSKU: "A", Size: "9", Quantity: 0}}, TotalAmount: dec("10")}},
		{"no lookup key", &CreateInvoiceRequest{Items: []InvoiceItemRequest{{Size: "9", Quantity: 1}}, TotalAmount: dec("10")}},
		{"blank size", &CreateInvoiceRequest{Items: []InvoiceItemRequest{{ProductSKU: "A", Size: "  ", Quantity: 1}}, TotalAmount: dec("10")}},
		{"negative price", &CreateInvoiceRequest{Items: []InvoiceItemRequest{{ProductSKU: "A", Size: "9", Quantity: 1, Price: dec("-1")}}, TotalAmount: dec("10")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invoices.CreateInvoice(context.Background(), tt.req)
			assert.Equal(t, apperror.CodeInvalidRequest, apperror.CodeOf(err))
		})
	}
	assert.Zero(t, env.invoiceCount(t))
}

func TestCreateInvoice_InvalidatesCacheAndPublishes(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p := env.createAirMax(t)

	_, err := env.products.GetProduct(ctx, p.SKU)
	require.NoError(t, err)
	require.True(t, env.cache.has(productKey(p.SKU)))
	env.events.reset()

	_, err = env.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{ProductSKU: p.SKU, Size: "9", Quantity: 1}},
		TotalAmount: dec("90"),
	})
	require.NoError(t, err)

	assert.False(t, env.cache.has(productKey(p.SKU)))
	assert.Equal(t, []string{"stock_update/invoiced", "invoice_created"}, env.events.types())

	cached, err := env.products.GetProduct(ctx, p.SKU)
	require.NoError(t, err)
	assert.Equal(t, 4, cached.Stock)
}

func TestGetAllInvoices_NewestFirstWithRefs(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	p := env.createAirMax(t)

	for i := 0; i < 2; i++ {
		_, err := env.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
			Items:       []InvoiceItemRequest{{ProductSKU: p.SKU, Size: "9", Quantity: 1}},
			TotalAmount: dec("90"),
		})
		require.NoError(t, err)
	}

	all, err := env.invoices.GetAllInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FAC-1002", all[0].InvoiceNumber)
	require.NotNil(t, all[0].Items[0].Product)
	assert.Equal(t, p.SKU, all[0].Items[0].Product.SKU)
}

func TestDeleteAllInvoices_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, repository.NewGormUnitOfWork)
	env.recordInvoice(t)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	n, err := env.invoices.DeleteAllInvoices(ctx)

	e := appErr(t, err)
	assert.Equal(t, apperror.CodeStoreUnavailable, e.Code)
	assert.Equal(t, 503, e.Status())
	assert.Zero(t, n)
	assert.NotContains(t, env.events.types(), "invoices_purged")
}

func (e *testEnv) recordInvoice(t *testing.T) {
	t.Helper()
	p := e.createAirMax(t)
	_, err := e.invoices.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		Items:       []InvoiceItemRequest{{ProductSKU: p.SKU, Size: "9", Quantity: 1}},
		TotalAmount: dec("90"),
	})
	require.NoError(t, err)
}

func TestInvoiceNumberHelpers(t *testing.T) {
	assert.Equal(t, "FAC-1001", FormatInvoiceNumber(1001))

	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"FAC-1007", 1007, true},
		{"FAC-2024-15", 15, true},
		{"FAC-", 0, false},
		{"1007", 0, false},
		{"FAC-abc", 0, false},
	}
	for _, tt := range tests {
		n, ok := ParseInvoiceNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}
}

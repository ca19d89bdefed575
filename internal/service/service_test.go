package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"go-shoeroom/internal/events"
	"go-shoeroom/internal/model"
	"go-shoeroom/internal/repository"
	"go-shoeroom/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	products ProductService
	invoices InvoiceService
	cache    *memCache
	events   *recorder
}

// unitsOfWork runs a test against both scope implementations.
var unitsOfWork = map[string]func(db *gorm.DB) repository.UnitOfWork{
	"transactional": repository.NewGormUnitOfWork,
	"compensating":  repository.NewCompensatingUnitOfWork,
}

func setupTestEnv(t *testing.T, newUOW func(db *gorm.DB) repository.UnitOfWork) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{db: db, cache: newMemCache(), events: &recorder{}}
	uow := newUOW(db)
	env.products = NewProductService(uow, repository.NewProductRepo(db), env.cache, env.events)
	env.invoices = NewInvoiceService(uow, repository.NewInvoiceRepo(db), sqlDB, env.cache, env.events)
	return env
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (e *testEnv) createAirMax(t *testing.T) *model.Product {
	t.Helper()
	p, err := e.products.CreateProduct(context.Background(), &CreateProductRequest{
		Name:     "Air Max",
		Category: "Nike",
		Price:    dec("100"),
		Discount: 10,
		Sizes:    []model.SizeStock{{Size: "9", Quantity: 5}, {Size: "10", Quantity: 0}},
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) invoiceCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Invoice{}).Count(&n).Error)
	return n
}

func (e *testEnv) stockOf(t *testing.T, sku, size string) int {
	t.Helper()
	p, err := repository.NewProductRepo(e.db).FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	q, _ := p.QuantityOf(size)
	return q
}

// memCache is an in-process ProductCache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		if e.Action != "" {
			out = append(out, e.Type+"/"+e.Action)
		} else {
			out = append(out, e.Type)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

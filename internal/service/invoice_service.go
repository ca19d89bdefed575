package service

import (
	"context"
	"errors"
	"log"

	"go-shoeroom/internal/apperror"
	"go-shoeroom/internal/events"
	"go-shoeroom/internal/model"
	"go-shoeroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*model.Invoice, error)
	GetAllInvoices(ctx context.Context) ([]model.Invoice, error)
	DeleteAllInvoices(ctx context.Context) (int64, error)
}

// InvoiceItemRequest names the product by id, sku or name; at least one
// must be present.
type InvoiceItemRequest struct {
	Product     string           `json:"product" validate:"required_without_all=ProductSKU ProductName"`
	ProductSKU  string           `json:"productSku"`
	ProductName string           `json:"productName"`
	Size        string           `json:"size" validate:"required,notblank"`
	Quantity    int              `json:"quantity" validate:"required,gt=0"`
	Price       *decimal.Decimal `json:"price"`
}

type CreateInvoiceRequest struct {
	Items       []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount *decimal.Decimal     `json:"totalAmount" validate:"required"`
}

// Pinger reports whether the store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type invoiceService struct {
	uow       repository.UnitOfWork
	invoices  repository.InvoiceRepository
	store     Pinger
	cache     ProductCache
	publisher events.Publisher
}

func NewInvoiceService(uow repository.UnitOfWork, invoices repository.InvoiceRepository, store Pinger, cache ProductCache, publisher events.Publisher) InvoiceService {
	if publisher == nil {
		publisher = events.Nop()
	}
	return &invoiceService{
		uow:       uow,
		invoices:  invoices,
		store:     store,
		cache:     orNopCache(cache),
		publisher: publisher,
	}
}

func validateInvoiceRequest(req *CreateInvoiceRequest) error {
	if req == nil || len(req.Items) == 0 || req.TotalAmount == nil || req.TotalAmount.IsZero() {
		return apperror.InvalidRequest("Invoice items and total amount are required.", nil)
	}
	if err := validate(req); err != nil {
		return err
	}
	if req.TotalAmount.IsNegative() {
		return apperror.InvalidRequest("totalAmount must not be negative", map[string]any{"totalAmount": req.TotalAmount})
	}
	for i, item := range req.Items {
		if item.Price != nil && item.Price.IsNegative() {
			return apperror.InvalidRequest("item price must not be negative", map[string]any{"item": i, "price": item.Price})
		}
	}
	return nil
}

// CreateInvoice decrements stock for every line and persists the invoice
// as one unit of work. Any failing line aborts the whole scope.
func (s *invoiceService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*model.Invoice, error) {
	// 1. Validasi request
	if err := validateInvoiceRequest(req); err != nil {
		return nil, err
	}

	// 2. Mulai scope
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() {
		if err := scope.Abort(); err != nil {
			log.Printf("invoice: abort scope: %v", err)
		}
	}()

	invoice := &model.Invoice{
		TotalAmount: *req.TotalAmount,
		Items:       make([]model.InvoiceItem, 0, len(req.Items)),
	}
	touched := map[uuid.UUID]*model.Product{}
	var order []uuid.UUID

	// 3. Proses item sesuai urutan request
	products := scope.Products()
	for i, item := range req.Items {
		product, err := resolveProduct(ctx, products, item)
		if err != nil {
			log.Printf("invoice: item %d aborted: %v", i, err)
			return nil, err
		}

		available, ok := product.QuantityOf(item.Size)
		if !ok {
			log.Printf("invoice: item %d aborted: size %s not available for %s", i, item.Size, product.SKU)
			return nil, apperror.SizeNotAvailable(product.ID.String(), product.Name, item.Size, product.SizeLabels())
		}
		if available < item.Quantity {
			log.Printf("invoice: item %d aborted: %s size %s has %d, requested %d", i, product.SKU, item.Size, available, item.Quantity)
			return nil, apperror.InsufficientStock(product.ID.String(), product.Name, item.Size, available, item.Quantity)
		}

		if err := product.AdjustStock(item.Size, -item.Quantity); err != nil {
			return nil, err
		}
		if err := products.Save(ctx, product); err != nil {
			return nil, storeError(err)
		}

		if _, seen := touched[product.ID]; !seen {
			order = append(order, product.ID)
		}
		touched[product.ID] = product

		invoice.Items = append(invoice.Items, model.InvoiceItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Price:       unitPrice(item, product),
		})
	}

	// 4. Generate nomor invoice
	seq, err := scope.Sequences().Next(ctx, repository.InvoiceSequenceName, latestInvoiceSeed(scope.Invoices()))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.InvoiceNumberConflict("", err)
		}
		return nil, storeError(err)
	}
	invoice.Sequence = seq
	invoice.InvoiceNumber = FormatInvoiceNumber(seq)

	// 5. Simpan invoice
	if err := scope.Invoices().Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.InvoiceNumberConflict(invoice.InvoiceNumber, err)
		}
		return nil, storeError(err)
	}

	// 6. Commit
	if err := scope.Commit(); err != nil {
		return nil, storeError(err)
	}

	if computed := invoice.ItemsTotal(); !computed.Equal(invoice.TotalAmount) {
		log.Printf("invoice: %s totalAmount %s differs from line total %s", invoice.InvoiceNumber, invoice.TotalAmount, computed)
	}

	// 7. Invalidate cache + broadcast (setelah commit)
	skus := make([]string, 0, len(order))
	for _, id := range order {
		skus = append(skus, touched[id].SKU)
	}
	invalidateProducts(ctx, s.cache, skus...)
	for _, id := range order {
		publishStock(ctx, s.publisher, events.ActionInvoiced, touched[id])
	}
	if err := s.publisher.Publish(ctx, events.New(events.TypeInvoiceCreated, "", invoice.InvoiceNumber, invoice)); err != nil {
		log.Printf("events: publish invoice %s: %v", invoice.InvoiceNumber, err)
	}

	return invoice, nil
}

// unitPrice is the explicit line price when one was sent, otherwise the
// product's discounted price, rounded to cents.
func unitPrice(item InvoiceItemRequest, product *model.Product) decimal.Decimal {
	if item.Price != nil && !item.Price.IsZero() {
		return *item.Price
	}
	return product.EffectivePrice().Round(2)
}

func (s *invoiceService) GetAllInvoices(ctx context.Context) ([]model.Invoice, error) {
	invoices, err := s.invoices.FindAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	return invoices, nil
}

// DeleteAllInvoices wipes every invoice and restarts numbering. Stock is
// not restored.
func (s *invoiceService) DeleteAllInvoices(ctx context.Context) (int64, error) {
	if s.store != nil {
		if err := s.store.PingContext(ctx); err != nil {
			return 0, apperror.StoreUnavailable(err)
		}
	}
	n, err := s.invoices.DeleteAll(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	if err := s.publisher.Publish(ctx, events.New(events.TypeInvoicesPurged, "", "", map[string]int64{"deleted": n})); err != nil {
		log.Printf("events: publish purge: %v", err)
	}
	return n, nil
}

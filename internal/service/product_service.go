package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"go-shoeroom/internal/apperror"
	"go-shoeroom/internal/events"
	"go-shoeroom/internal/model"
	"go-shoeroom/internal/repository"

	"github.com/shopspring/decimal"
)

// skuAttempts bounds how many generated SKUs are tried before giving up.
const skuAttempts = 3

type ProductService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, sku string) (*model.Product, error)
	UpdateProduct(ctx context.Context, sku string, req *UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, sku string) (*model.Product, error)
	AdjustStock(ctx context.Context, sku string, req *AdjustStockRequest) (*model.Product, error)
}

type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required,notblank"`
	SKU         string            `json:"sku" validate:"max=50"`
	Price       *decimal.Decimal  `json:"price" validate:"required"`
	Stock       *int              `json:"stock"` // ignored, stock is derived from sizes
	Sizes       []model.SizeStock `json:"sizes" validate:"omitempty,dive"`
	Talle       []string          `json:"talle"`
	Category    string            `json:"category" validate:"required,notblank,max=100"`
	Image       string            `json:"image"`
	Discount    float64           `json:"discount" validate:"gte=0,lte=100"`
	Description string            `json:"description"`
}

// UpdateProductRequest is a partial update: nil fields are left alone.
type UpdateProductRequest struct {
	Name        *string           `json:"name" validate:"omitempty,notblank"`
	SKU         *string           `json:"sku" validate:"omitempty,notblank,max=50"`
	Price       *decimal.Decimal  `json:"price"`
	Stock       *int              `json:"stock"` // ignored, stock is derived from sizes
	Sizes       []model.SizeStock `json:"sizes" validate:"omitempty,dive"`
	Talle       []string          `json:"talle"`
	Category    *string           `json:"category" validate:"omitempty,notblank,max=100"`
	Image       *string           `json:"image"`
	Discount    *float64          `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Description *string           `json:"description"`
}

type AdjustStockRequest struct {
	Size  string `json:"size" validate:"required,notblank"`
	Delta int    `json:"delta" validate:"required"`
}

type productService struct {
	uow       repository.UnitOfWork
	products  repository.ProductRepository
	cache     ProductCache
	publisher events.Publisher
}

func NewProductService(uow repository.UnitOfWork, products repository.ProductRepository, cache ProductCache, publisher events.Publisher) ProductService {
	if publisher == nil {
		publisher = events.Nop()
	}
	return &productService{
		uow:       uow,
		products:  products,
		cache:     orNopCache(cache),
		publisher: publisher,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*model.Product, error) {
	// 1. Validasi request
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.InvalidRequest("price must not be negative", map[string]any{"price": req.Price})
	}

	// 2. Normalisasi payload
	product := &model.Product{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Image:       req.Image,
		Price:       *req.Price,
		Discount:    req.Discount,
	}
	product.ReplaceSizes(req.Sizes)
	product.ReplaceSizeLabels(req.Talle)

	// 3. Simpan, generate SKU kalau kosong
	if product.SKU != "" {
		if err := s.products.Create(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperror.DuplicateSKU(product.SKU, err)
			}
			return nil, storeError(err)
		}
	} else if err := s.createWithGeneratedSKU(ctx, product); err != nil {
		return nil, err
	}

	// 4. Invalidate cache + broadcast
	s.afterWrite(ctx, events.ActionProductCreated, product)
	return product, nil
}

// createWithGeneratedSKU numbers the SKU after the products already in the
// category and bumps the sequence when a concurrent create took it first.
func (s *productService) createWithGeneratedSKU(ctx context.Context, product *model.Product) error {
	count, err := s.products.CountByCategory(ctx, product.Category)
	if err != nil {
		return storeError(err)
	}
	brand := model.BrandCode(product.Category)
	code := model.ModelCode(product.Name, product.Category)

	for attempt := 0; attempt < skuAttempts; attempt++ {
		product.SKU = model.FormatSKU(brand, code, int(count)+1+attempt)
		err = s.products.Create(ctx, product)
		if !errors.Is(err, repository.ErrDuplicate) {
			return storeError(err)
		}
		log.Printf("product: generated sku %s already taken, retrying", product.SKU)
	}
	return apperror.DuplicateSKU(product.SKU, err)
}

func (s *productService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if hit, err := s.cache.Get(ctx, productListKey, &products); err != nil {
		log.Printf("cache: get %s: %v", productListKey, err)
	} else if hit {
		return products, nil
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	if err := s.cache.Set(ctx, productListKey, products); err != nil {
		log.Printf("cache: set %s: %v", productListKey, err)
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, sku string) (*model.Product, error) {
	key := productKey(sku)
	var cached model.Product
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Printf("cache: get %s: %v", key, err)
	} else if hit {
		return &cached, nil
	}

	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, notFoundBySKU(sku, err)
	}
	if err := s.cache.Set(ctx, key, product); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, sku string, req *UpdateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperror.InvalidRequest("price must not be negative", map[string]any{"price": req.Price})
	}

	var updated *model.Product
	err := s.withScope(ctx, func(scope repository.Scope) error {
		// 1. Cari & lock product
		existing, err := scope.Products().FindBySKU(ctx, sku)
		if err != nil {
			return notFoundBySKU(sku, err)
		}

		// 2. Update fields yang dikirim saja
		applyUpdate(existing, req)

		// 3. Simpan
		if err := scope.Products().Save(ctx, existing); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.DuplicateSKU(existing.SKU, err)
			}
			return storeError(err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(ctx, s.cache, sku)
	s.afterWrite(ctx, events.ActionProductUpdated, updated)
	return updated, nil
}

func applyUpdate(p *model.Product, req *UpdateProductRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Discount != nil {
		p.Discount = *req.Discount
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Sizes != nil {
		p.ReplaceSizes(req.Sizes)
	} else if req.Talle != nil {
		p.ReplaceSizeLabels(req.Talle)
	}
}

func (s *productService) DeleteProduct(ctx context.Context, sku string) (*model.Product, error) {
	deleted, err := s.products.DeleteBySKU(ctx, sku)
	if err != nil {
		return nil, notFoundBySKU(sku, err)
	}
	s.afterWrite(ctx, events.ActionProductDeleted, deleted)
	return deleted, nil
}

// AdjustStock applies a restock or correction to one size of the ledger.
func (s *productService) AdjustStock(ctx context.Context, sku string, req *AdjustStockRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var adjusted *model.Product
	err := s.withScope(ctx, func(scope repository.Scope) error {
		product, err := scope.Products().FindBySKU(ctx, sku)
		if err != nil {
			return notFoundBySKU(sku, err)
		}
		if err := product.AdjustStock(strings.TrimSpace(req.Size), req.Delta); err != nil {
			return err
		}
		if err := scope.Products().Save(ctx, product); err != nil {
			return storeError(err)
		}
		adjusted = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.ActionStockAdjusted, adjusted)
	return adjusted, nil
}

// withScope runs fn in a unit of work, committing on success.
func (s *productService) withScope(ctx context.Context, fn func(scope repository.Scope) error) error {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return storeError(err)
	}
	defer func() {
		if err := scope.Abort(); err != nil {
			log.Printf("product: abort scope: %v", err)
		}
	}()

	if err := fn(scope); err != nil {
		return err
	}
	return storeError(scope.Commit())
}

func (s *productService) afterWrite(ctx context.Context, action string, p *model.Product) {
	invalidateProducts(ctx, s.cache, p.SKU)
	publishStock(ctx, s.publisher, action, p)
}

func publishStock(ctx context.Context, pub events.Publisher, action string, p *model.Product) {
	payload := map[string]any{
		"id":    p.ID,
		"sku":   p.SKU,
		"name":  p.Name,
		"stock": p.Stock,
		"sizes": p.Sizes,
		"price": p.Price,
	}
	if err := pub.Publish(ctx, events.New(events.TypeStockUpdate, action, p.SKU, payload)); err != nil {
		log.Printf("events: publish %s %s: %v", action, p.SKU, err)
	}
}

func notFoundBySKU(sku string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ProductNotFound("", sku, "")
	}
	return storeError(err)
}

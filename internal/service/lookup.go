package service

import (
	"context"
	"errors"
	"strings"

	"go-shoeroom/internal/apperror"
	"go-shoeroom/internal/model"
	"go-shoeroom/internal/repository"

	"github.com/google/uuid"
)

// productLookup is one way of resolving an invoice line to a product.
type productLookup struct {
	key  func(item InvoiceItemRequest) string
	find func(ctx context.Context, repo repository.ProductRepository, key string) (*model.Product, error)
}

// productLookups are tried in order; the first match wins.
var productLookups = []productLookup{
	{
		key: func(item InvoiceItemRequest) string { return item.Product },
		find: func(ctx context.Context, repo repository.ProductRepository, key string) (*model.Product, error) {
			id, err := uuid.Parse(key)
			if err != nil {
				return nil, repository.ErrNotFound
			}
			return repo.FindByID(ctx, id)
		},
	},
	{
		key: func(item InvoiceItemRequest) string { return item.ProductSKU },
		find: func(ctx context.Context, repo repository.ProductRepository, key string) (*model.Product, error) {
			return repo.FindBySKU(ctx, key)
		},
	},
	{
		key: func(item InvoiceItemRequest) string { return item.ProductName },
		find: func(ctx context.Context, repo repository.ProductRepository, key string) (*model.Product, error) {
			return repo.FindByName(ctx, key)
		},
	},
}

func resolveProduct(ctx context.Context, repo repository.ProductRepository, item InvoiceItemRequest) (*model.Product, error) {
	for _, l := range productLookups {
		key := strings.TrimSpace(l.key(item))
		if key == "" {
			continue
		}
		product, err := l.find(ctx, repo, key)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err)
		}
	}
	return nil, apperror.ProductNotFound(item.Product, item.ProductSKU, item.ProductName)
}

package service

import (
	"context"
	"log"
)

// ProductCache is the read-through cache in front of product lookups.
// *cache.Cache satisfies it.
type ProductCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

const productListKey = "products"

func productKey(sku string) string {
	return "product:" + sku
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any) error         { return nil }
func (nopCache) Delete(context.Context, ...string) error        { return nil }

func orNopCache(c ProductCache) ProductCache {
	if c == nil {
		return nopCache{}
	}
	return c
}

// invalidateProducts drops the list entry and every given sku. Cache
// failures are logged; the store stays authoritative.
func invalidateProducts(ctx context.Context, c ProductCache, skus ...string) {
	keys := make([]string, 0, len(skus)+1)
	keys = append(keys, productListKey)
	for _, sku := range skus {
		if sku != "" {
			keys = append(keys, productKey(sku))
		}
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Printf("cache: invalidate %v: %v", keys, err)
	}
}

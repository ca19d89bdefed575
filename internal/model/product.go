package model

import (
	"go-shoeroom/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	BaseModel
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"type:text" json:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Discount    float64         `gorm:"default:0" json:"discount"`

	// Ledger. Stock and Talle are derived from Sizes; mutate through
	// AdjustStock or ReplaceSizes only.
	Sizes datatypes.JSONSlice[SizeStock] `json:"sizes"`
	Talle datatypes.JSONSlice[string]    `json:"talle"`
	Stock int                            `gorm:"not null;default:0" json:"stock"`
}

// ProductRef is the slim view of a product embedded in invoice listings.
type ProductRef struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `json:"name"`
	SKU  string    `json:"sku"`
}

func (ProductRef) TableName() string {
	return "products"
}

// QuantityOf returns the quantity held for size and whether the size exists.
func (p *Product) QuantityOf(size string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity, true
		}
	}
	return 0, false
}

// HasSufficientStock never mutates the product.
func (p *Product) HasSufficientStock(size string, quantity int) bool {
	q, ok := p.QuantityOf(size)
	return ok && q >= quantity
}

// SizeLabels lists the sizes present in the ledger, in ledger order.
func (p *Product) SizeLabels() []string {
	labels := make([]string, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		labels = append(labels, s.Size)
	}
	return labels
}

// AdjustStock applies delta to one size. Negative deltas consume stock,
// positive ones restock; an unknown size is appended on restock.
// On failure the product is left untouched.
func (p *Product) AdjustStock(size string, delta int) error {
	next := make([]SizeStock, len(p.Sizes), len(p.Sizes)+1)
	copy(next, p.Sizes)

	idx := -1
	for i, s := range next {
		if s.Size == size {
			idx = i
			break
		}
	}

	if idx == -1 {
		if delta < 0 {
			return apperror.InvalidOperation("cannot reduce stock for a size that does not exist", map[string]any{
				"productId": p.ID.String(),
				"size":      size,
				"delta":     delta,
			})
		}
		next = append(next, SizeStock{Size: size, Quantity: delta})
	} else {
		current := next[idx].Quantity
		if current+delta < 0 {
			return apperror.InsufficientStock(p.ID.String(), p.Name, size, current, -delta)
		}
		next[idx].Quantity = current + delta
	}

	p.setLedger(next)
	return nil
}

// ReplaceSizes swaps the whole ledger for a canonicalized copy of sizes.
func (p *Product) ReplaceSizes(sizes []SizeStock) {
	p.setLedger(NormalizeSizes(sizes))
}

// ReplaceSizeLabels stores a legacy label list. It only applies while the
// product has no size ledger; otherwise labels mirror Sizes.
func (p *Product) ReplaceSizeLabels(labels []string) {
	if len(p.Sizes) > 0 {
		return
	}
	p.Talle = NormalizeSizeLabels(labels)
}

// Recompute re-derives Stock and Talle from Sizes.
func (p *Product) Recompute() {
	if len(p.Sizes) == 0 {
		if p.Sizes == nil {
			p.Sizes = []SizeStock{}
		}
		if p.Talle == nil {
			p.Talle = []string{}
		}
		p.Stock = 0
		return
	}
	p.setLedger(p.Sizes)
}

func (p *Product) setLedger(sizes []SizeStock) {
	SortSizes(sizes)
	p.Sizes = sizes
	p.Stock = TotalStock(sizes)
	p.Talle = p.SizeLabels()
}

// EffectivePrice is the list price minus the product discount.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount == 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.Discount).Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor)
}

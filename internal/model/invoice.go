package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is immutable once created. Line items are snapshots: the product
// name and unit price are copied at invoice time.
type Invoice struct {
	BaseModel
	InvoiceNumber string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"invoiceNumber"`
	Sequence      int64           `gorm:"not null;index" json:"-"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
}

type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position    int             `gorm:"not null" json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product     *ProductRef     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"productName"`
	Size        string          `gorm:"type:varchar(20);not null" json:"size"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// LineTotal is unit price times quantity.
func (i InvoiceItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line totals.
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// InvoiceSequence is the store-level counter behind invoice numbers.
type InvoiceSequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null"`
}

func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

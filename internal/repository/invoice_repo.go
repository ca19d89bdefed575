package repository

import (
	"context"

	"go-shoeroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindAll(ctx context.Context) ([]model.Invoice, error)
	FindLatest(ctx context.Context) (*model.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db}
}

// Create inserts the invoice together with its line items.
func (r *invoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	for i := range invoice.Items {
		invoice.Items[i].Position = i
	}
	return translate("create invoice", r.db.WithContext(ctx).Create(invoice).Error)
}

// FindAll returns invoices newest first, lines in request order, with the
// product reference of each line resolved when the product still exists.
func (r *invoiceRepo) FindAll(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		Order("created_at DESC").
		Order("sequence DESC").
		Find(&invoices).Error
	return invoices, translate("list invoices", err)
}

func (r *invoiceRepo) FindLatest(ctx context.Context) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("sequence DESC").Take(&invoice).Error
	if err != nil {
		return nil, translate("find latest invoice", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.InvoiceItem{}, "invoice_id = ?", id).Error; err != nil {
			return translate("delete invoice items", err)
		}
		res := tx.Delete(&model.Invoice{}, "id = ?", id)
		if res.Error != nil {
			return translate("delete invoice", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteAll wipes every invoice and resets numbering so it reseeds from scratch.
func (r *invoiceRepo) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&model.InvoiceItem{}).Error; err != nil {
			return translate("delete invoice items", err)
		}
		res := global.Delete(&model.Invoice{})
		if res.Error != nil {
			return translate("delete invoices", res.Error)
		}
		deleted = res.RowsAffected
		return translate("reset invoice sequence", tx.Delete(&model.InvoiceSequence{}, "name = ?", InvoiceSequenceName).Error)
	})
	return deleted, err
}

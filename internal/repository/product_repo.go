package repository

import (
	"context"

	"go-shoeroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	Save(ctx context.Context, product *model.Product) error
	DeleteBySKU(ctx context.Context, sku string) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo struct {
	db   *gorm.DB
	lock bool // take row locks on reads (inside a transaction)
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	product.Recompute()
	return translate("create product", r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&products).Error
	return products, translate("list products", err)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.first(ctx, "find product by id", "id = ?", id)
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.first(ctx, "find product by sku", "sku = ?", sku)
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	return r.first(ctx, "find product by name", "name = ?", name)
}

func (r *productRepo) first(ctx context.Context, op string, cond string, arg any) (*model.Product, error) {
	var product model.Product
	if err := r.query(ctx).Order("created_at ASC").First(&product, cond, arg).Error; err != nil {
		return nil, translate(op, err)
	}
	return &product, nil
}

func (r *productRepo) CountByCategory(ctx context.Context, category string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("category = ?", category).Count(&n).Error
	return n, translate("count products", err)
}

// Save writes every column of product, canonicalizing the ledger first.
func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	product.Recompute()
	return translate("save product", r.db.WithContext(ctx).Save(product).Error)
}

// DeleteBySKU removes the product and returns the deleted row.
func (r *productRepo) DeleteBySKU(ctx context.Context, sku string) (*model.Product, error) {
	product, err := r.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if err := r.Delete(ctx, product.ID); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

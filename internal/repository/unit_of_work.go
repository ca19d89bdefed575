package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-shoeroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is one unit of work over several repositories. Writes made through
// a scope become visible together on Commit or are undone on Abort.
// Abort after Commit is a no-op, so callers can defer it.
type Scope interface {
	Products() ProductRepository
	Invoices() InvoiceRepository
	Sequences() SequenceRepository
	Commit() error
	Abort() error
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Scope, error)
}

// ---- transactional ----

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork runs every scope in a database transaction. Product
// reads inside the scope lock their rows until the scope ends.
func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db}
}

func (u *gormUnitOfWork) Begin(ctx context.Context) (Scope, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, translate("begin transaction", tx.Error)
	}
	return &gormScope{tx: tx}, nil
}

type gormScope struct {
	tx   *gorm.DB
	done bool
}

func (s *gormScope) Products() ProductRepository   { return &productRepo{db: s.tx, lock: true} }
func (s *gormScope) Invoices() InvoiceRepository   { return &invoiceRepo{db: s.tx} }
func (s *gormScope) Sequences() SequenceRepository { return &sequenceRepo{db: s.tx} }

func (s *gormScope) Commit() error {
	if s.done {
		return ErrScopeClosed
	}
	s.done = true
	return translate("commit", s.tx.Commit().Error)
}

func (s *gormScope) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	return translate("rollback", s.tx.Rollback().Error)
}

// ---- compensating ----

type compensatingUnitOfWork struct {
	db *gorm.DB
}

// NewCompensatingUnitOfWork is for stores or environments without
// multi-document transactions. Writes hit the store immediately, so other
// readers may observe them before Commit; Abort undoes them by replaying a
// journal of inverse operations in reverse order. Sequence values handed
// out by an aborted scope are not returned.
func NewCompensatingUnitOfWork(db *gorm.DB) UnitOfWork {
	return &compensatingUnitOfWork{db}
}

func (u *compensatingUnitOfWork) Begin(ctx context.Context) (Scope, error) {
	return &compensatingScope{db: u.db}, nil
}

type undoFunc func(ctx context.Context) error

type compensatingScope struct {
	db *gorm.DB

	mu      sync.Mutex
	journal []undoFunc
	done    bool
}

func (s *compensatingScope) record(undo undoFunc) {
	s.mu.Lock()
	s.journal = append(s.journal, undo)
	s.mu.Unlock()
}

func (s *compensatingScope) Products() ProductRepository {
	return &journalingProductRepo{ProductRepository: NewProductRepo(s.db), scope: s}
}

func (s *compensatingScope) Invoices() InvoiceRepository {
	return &journalingInvoiceRepo{InvoiceRepository: NewInvoiceRepo(s.db), scope: s}
}

func (s *compensatingScope) Sequences() SequenceRepository {
	return NewSequenceRepo(s.db)
}

func (s *compensatingScope) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrScopeClosed
	}
	s.done = true
	s.journal = nil
	return nil
}

func (s *compensatingScope) Abort() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	journal := s.journal
	s.journal = nil
	s.mu.Unlock()

	// Compensation must run even when the request context is already cancelled.
	ctx := context.Background()
	var errs []error
	for i := len(journal) - 1; i >= 0; i-- {
		if err := journal[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("compensate: %w", errors.Join(errs...))
	}
	return nil
}

type journalingProductRepo struct {
	ProductRepository
	scope *compensatingScope
}

func (r *journalingProductRepo) Create(ctx context.Context, product *model.Product) error {
	if err := r.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	id := product.ID
	r.scope.record(func(ctx context.Context) error {
		return r.ProductRepository.Delete(ctx, id)
	})
	return nil
}

func (r *journalingProductRepo) Save(ctx context.Context, product *model.Product) error {
	before, err := r.ProductRepository.FindByID(ctx, product.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := r.ProductRepository.Save(ctx, product); err != nil {
		return err
	}
	if before == nil {
		id := product.ID
		r.scope.record(func(ctx context.Context) error {
			return r.ProductRepository.Delete(ctx, id)
		})
		return nil
	}
	r.scope.record(func(ctx context.Context) error {
		return r.ProductRepository.Save(ctx, before)
	})
	return nil
}

func (r *journalingProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := r.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.scope.record(func(ctx context.Context) error {
		return r.ProductRepository.Create(ctx, before)
	})
	return nil
}

func (r *journalingProductRepo) DeleteBySKU(ctx context.Context, sku string) (*model.Product, error) {
	product, err := r.ProductRepository.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if err := r.Delete(ctx, product.ID); err != nil {
		return nil, err
	}
	return product, nil
}

type journalingInvoiceRepo struct {
	InvoiceRepository
	scope *compensatingScope
}

func (r *journalingInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	if err := r.InvoiceRepository.Create(ctx, invoice); err != nil {
		return err
	}
	id := invoice.ID
	r.scope.record(func(ctx context.Context) error {
		return r.InvoiceRepository.Delete(ctx, id)
	})
	return nil
}

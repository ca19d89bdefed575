package repository

import (
	"context"
	"errors"
	"fmt"

	"go-shoeroom/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const InvoiceSequenceName = "invoice"

// maxBumpAttempts bounds the optimistic retry when the row is not locked
// (SQLite, compensating scopes).
const maxBumpAttempts = 5

// SeedFunc returns the last value issued before the counter row existed.
type SeedFunc func(ctx context.Context) (int64, error)

type SequenceRepository interface {
	// Next atomically increments the named counter and returns the new value.
	Next(ctx context.Context, name string, seed SeedFunc) (int64, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

func (r *sequenceRepo) Next(ctx context.Context, name string, seed SeedFunc) (int64, error) {
	for attempt := 0; attempt < maxBumpAttempts; attempt++ {
		var seq model.InvoiceSequence
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&seq, "name = ?", name).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			last, err := seed(ctx)
			if err != nil {
				return 0, err
			}
			seq = model.InvoiceSequence{Name: name, Value: last + 1}
			if err := r.db.WithContext(ctx).Create(&seq).Error; err != nil {
				return 0, translate("seed sequence", err)
			}
			return seq.Value, nil
		}
		if err != nil {
			return 0, translate("read sequence", err)
		}

		res := r.db.WithContext(ctx).Model(&model.InvoiceSequence{}).
			Where("name = ? AND value = ?", name, seq.Value).
			Update("value", seq.Value+1)
		if res.Error != nil {
			return 0, translate("bump sequence", res.Error)
		}
		if res.RowsAffected == 1 {
			return seq.Value + 1, nil
		}
	}
	return 0, fmt.Errorf("bump sequence %s: %w", name, ErrDuplicate)
}

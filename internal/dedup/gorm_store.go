package dedup

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lklbridge/internal/models"
)

// GormStore persists claims in the processed_transactions table. The unique
// index on trans_id makes Claim atomic: concurrent duplicates race at the
// database and exactly one insert wins. Durable across restarts.
type GormStore struct {
	db       *gorm.DB
	capacity int
}

func NewGormStore(db *gorm.DB, capacity int) *GormStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GormStore{db: db, capacity: capacity}
}

func (s *GormStore) Claim(ctx context.Context, transID string) (bool, error) {
	rec := models.ProcessedTransaction{
		TransID:   transID,
		ClaimedAt: nowUnix(),
	}
	tx := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec)
	if tx.Error != nil {
		return false, tx.Error
	}
	// Zero rows affected means the unique index swallowed the insert.
	return tx.RowsAffected == 0, nil
}

func (s *GormStore) Release(ctx context.Context, transID string) error {
	return s.db.WithContext(ctx).
		Where("trans_id = ?", transID).
		Delete(&models.ProcessedTransaction{}).Error
}

func (s *GormStore) Len(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ProcessedTransaction{}).
		Count(&count).Error
	return count, err
}

// Prune evicts the oldest entries beyond capacity. Run from the retention
// job rather than the request path. MySQL cannot delete from a table named
// in its own LIMIT subquery, so the victim ids are selected first and
// deleted by explicit list.
func (s *GormStore) Prune(ctx context.Context) (int64, error) {
	count, err := s.Len(ctx)
	if err != nil {
		return 0, err
	}
	excess := count - int64(s.capacity)
	if excess <= 0 {
		return 0, nil
	}

	var victims []uint
	if err := s.db.WithContext(ctx).
		Model(&models.ProcessedTransaction{}).
		Order("id ASC").
		Limit(int(excess)).
		Pluck("id", &victims).Error; err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}

	tx := s.db.WithContext(ctx).
		Where("id IN ?", victims).
		Delete(&models.ProcessedTransaction{})
	return tx.RowsAffected, tx.Error
}

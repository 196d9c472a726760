// Package history keeps a bounded, most-recent-first record of
// completed diagnoses. The inference pipeline does not depend on it.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one completed diagnosis.
type Entry struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UUID       string    `gorm:"uniqueIndex;not null" json:"id"`
	ImageName  string    `json:"image_name"`
	Label      string    `json:"label"`
	Confidence string    `json:"confidence"`
	Advice     string    `json:"advice"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is a capped diagnosis log backed by sqlite. Entries past the
// cap are pruned oldest-first on every append.
type Store struct {
	db    *gorm.DB
	limit int
}

func Open(dsn string, limit int) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &Store{db: db, limit: limit}, nil
}

// Append records a diagnosis and prunes entries beyond the cap in the
// same transaction.
func (s *Store) Append(e Entry) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&e).Error; err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}

		keep := tx.Model(&Entry{}).Select("id").Order("id DESC").Limit(s.limit)
		if err := tx.Where("id NOT IN (?)", keep).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}

		return nil
	})
}

// Recent returns up to the cap's worth of entries, newest first.
func (s *Store) Recent() ([]Entry, error) {
	var entries []Entry
	if err := s.db.Order("id DESC").Limit(s.limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

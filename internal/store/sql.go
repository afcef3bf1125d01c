package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/whisphaven/internal/db"
)

// Entry is one key-value row.
type Entry struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// SQL stores entries in a single table through GORM, so it runs on any
// dialector db.Init supports.
type SQL struct {
	db *gorm.DB
}

// NewSQL migrates the kv_entries table and returns the store.
func NewSQL(gdb *gorm.DB) (*SQL, error) {
	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQL{db: gdb}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	if err := s.db.WithContext(ctx).First(&e, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Name: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{}, "name = ?", key).Error
}

func (s *SQL) Close() error {
	return db.Close(s.db)
}

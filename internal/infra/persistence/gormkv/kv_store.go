package gormkv

import (
	"context"

	"campus/internal/domain/repository"
	"campus/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvStore implements repository.KVStore over the kv_entries table.
type kvStore struct {
	db *gorm.DB
}

// NewKVStore wraps an opened database. Close closes the underlying connection pool.
func NewKVStore(db *gorm.DB) repository.KVStore {
	return &kvStore{db: db}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	var entry model.KVEntryModel
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read key %s", key)
	}

	return entry.Value, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	entry := &model.KVEntryModel{Key: key, Value: value}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(entry).Error

	return errors.Wrapf(err, "failed to write key %s", key)
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&model.KVEntryModel{}).Error

	return errors.Wrapf(err, "failed to remove key %s", key)
}

func (s *kvStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.KVEntryModel{}).Error

	return errors.Wrap(err, "failed to clear kv_entries")
}

func (s *kvStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}

	return errors.WithStack(sqlDB.Close())
}

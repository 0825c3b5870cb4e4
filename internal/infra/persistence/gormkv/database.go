// Package gormkv implements the KVStore on a relational table through GORM,
// backed by an on-device SQLite file or a PostgreSQL server.
package gormkv

import (
	"log/slog"

	"campus/config"
	"campus/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"gorm.io/gorm"
)

// Open connects to the database selected by storage.driver and migrates the kv_entries table.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		db, err = openSQLite(cfg.Storage.SQLitePath)
	case config.StorageDriverPostgres:
		db, err = pgLib.New(cfg.Postgres)
		err = errors.Wrap(err, "failed to create PostgreSQL client")
	default:
		return nil, errors.Errorf("storage driver %s is not backed by gorm", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	db = db.Session(&gorm.Session{
		// Every write is a single upsert or delete; no implicit transaction needed.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(logger, cfg),
	})

	if err := db.AutoMigrate(&model.KVEntryModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate kv_entries")
	}

	return db, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sqlite sql.DB")
	}
	// One connection: SQLite serializes writers anyway, and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

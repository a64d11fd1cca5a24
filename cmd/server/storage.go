package main

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/internal/config"
	"github.com/VitaminP8/gqlapi/internal/post"
	"github.com/VitaminP8/gqlapi/internal/storage/memory"
	"github.com/VitaminP8/gqlapi/internal/storage/sqldb"
	"github.com/VitaminP8/gqlapi/internal/user"
)

type storages struct {
	Users  user.UserStorage
	Posts  post.PostStorage
	closer io.Closer
}

func (s *storages) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// openStorage connects the configured backend and migrates SQL schemas.
func openStorage(cfg *config.Config, log *zap.Logger) (*storages, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return openSQL(sqldb.DialectSQLite, cfg.SQLite.Path, cfg, log)

	case config.StoragePostgres:
		return openSQL(sqldb.DialectPostgres, cfg.Postgres.DSN(), cfg, log)

	case config.StorageMemory:
		log.Info("using in-memory storage")
		store := memory.NewStore()
		return &storages{
			Users: memory.NewUserMemoryStorage(store),
			Posts: memory.NewPostMemoryStorage(store),
		}, nil

	default:
		return nil, errors.Errorf("unknown storage type: %s", cfg.Storage)
	}
}

func openSQL(dialect, dsn string, cfg *config.Config, log *zap.Logger) (*storages, error) {
	db, err := sqldb.Open(dialect, dsn, log, cfg.Log.SQL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return &storages{
		Users:  sqldb.NewUserStorage(db),
		Posts:  sqldb.NewPostStorage(db),
		closer: db,
	}, nil
}

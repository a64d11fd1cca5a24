// Package sqldb implements the user and post storages on top of gorm,
// backed by sqlite or postgres.
package sqldb

import (
	"context"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/internal/logger"
	"github.com/VitaminP8/gqlapi/models"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// Database owns the connection pool. Every storage operation runs inside
// WithSession.
type Database struct {
	db *gorm.DB
}

// Open connects with the given gorm dialect ("sqlite3" or "postgres").
func Open(dialect, dsn string, log *zap.Logger, logSQL bool) (*Database, error) {
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to the %s database", dialect)
	}

	if dialect == DialectSQLite {
		// sqlite serializes writers; one connection avoids "database is locked"
		// and keeps :memory: databases on a single connection.
		db.DB().SetMaxOpenConns(1)
	}

	db.SetLogger(logger.NewGormLogger(log))
	db.LogMode(logSQL)

	log.Info("connected to the database", zap.String("dialect", dialect))
	return &Database{db: db}, nil
}

// sqliteDSN enables foreign keys through the DSN so every pooled connection
// enforces them, not only the one that ran a PRAGMA.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// GORM returns the underlying connection.
func (d *Database) GORM() *gorm.DB {
	return d.db
}

// Migrate creates the user and post tables with their indexes.
func (d *Database) Migrate() error {
	err := d.db.AutoMigrate(&models.User{}, &models.Post{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close the database connection")
	}
	return nil
}

// WithSession runs fn inside a transaction. The transaction is committed when
// fn returns nil and rolled back when it returns an error or panics.
func (d *Database) WithSession(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := d.db.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "could not begin session")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil {
				logger.FromContext(ctx).Warn("rollback failed", zap.Error(rbErr))
			}
			return
		}
		if cErr := tx.Commit().Error; cErr != nil {
			err = translateError(cErr, "could not commit session")
		}
	}()

	return fn(tx)
}

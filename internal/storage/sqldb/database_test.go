package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/models"
)

// setupTestDB opens a migrated in-memory sqlite database.
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open(DialectSQLite, ":memory:", zap.NewNop(), false)
	require.NoError(t, err, "Failed to connect to in-memory SQLite")
	require.NoError(t, db.Migrate(), "Failed to migrate database schema")

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func createTestUser(t *testing.T, db *Database, name, email string) uint {
	t.Helper()

	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.GORM().Create(user).Error, "Failed to create test user")
	return user.ID
}

func createTestPost(t *testing.T, db *Database, authorID uint, title, content string) uint {
	t.Helper()

	post := &models.Post{Title: title, Content: content, AuthorID: authorID}
	require.NoError(t, db.GORM().Create(post).Error, "Failed to create test post")
	return post.ID
}

func countRows(t *testing.T, db *Database, value interface{}) int {
	t.Helper()

	var n int
	require.NoError(t, db.GORM().Model(value).Count(&n).Error)
	return n
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file:test.db?cache=shared&_foreign_keys=on", sqliteDSN("file:test.db?cache=shared"))
}

func TestOpen_ForeignKeysOnEveryConnection(t *testing.T) {
	db, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "fk.db"), zap.NewNop(), false)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	// No idle connections: every statement below runs on a fresh connection.
	db.GORM().DB().SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var enabled int
		require.NoError(t, db.GORM().Raw("PRAGMA foreign_keys").Row().Scan(&enabled))
		assert.Equal(t, 1, enabled, "foreign keys disabled on connection %d", i)
	}

	err = db.GORM().Create(&models.Post{Title: "orphan", Content: "c", AuthorID: 404}).Error
	assert.Error(t, err, "a post without an existing author must be rejected by the database")
	assert.Zero(t, countRows(t, db, &models.Post{}))
}

func TestCloseWithNilDatabase(t *testing.T) {
	var db *Database
	assert.NoError(t, db.Close())
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.GORM().HasTable("user"))
	assert.True(t, db.GORM().HasTable("post"))
}

func TestWithSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits when fn succeeds", func(t *testing.T) {
		db := setupTestDB(t)

		err := db.WithSession(ctx, func(tx *gorm.DB) error {
			return tx.Create(&models.User{Name: "Ann", Email: "ann@example.com"}).Error
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countRows(t, db, &models.User{}))
	})

	t.Run("Rolls back when fn fails", func(t *testing.T) {
		db := setupTestDB(t)
		boom := errors.New("boom")

		err := db.WithSession(ctx, func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&models.User{Name: "Ann", Email: "ann@example.com"}).Error)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, countRows(t, db, &models.User{}))
	})

	t.Run("Rolls back and re-panics", func(t *testing.T) {
		db := setupTestDB(t)

		assert.PanicsWithValue(t, "boom", func() {
			_ = db.WithSession(ctx, func(tx *gorm.DB) error {
				require.NoError(t, tx.Create(&models.User{Name: "Ann", Email: "ann@example.com"}).Error)
				panic("boom")
			})
		})
		assert.Equal(t, 0, countRows(t, db, &models.User{}))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("Unique index on email", func(t *testing.T) {
		db := setupTestDB(t)
		createTestUser(t, db, "Ann", "ann@example.com")

		err := db.GORM().Create(&models.User{Name: "Other", Email: "ann@example.com"}).Error
		require.Error(t, err)
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("Other errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("some error")))
		assert.False(t, isUniqueViolation(nil))
	})
}

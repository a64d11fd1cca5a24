package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
)

func int32Ptr(v int32) *int32 { return &v }
func strPtr(v string) *string { return &v }

func TestUserMemoryStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserMemoryStorage(NewStore())

	t.Run("Successful user creation", func(t *testing.T) {
		user, err := users.CreateUser(ctx, model.UserInput{Name: "Ann", Email: "ann@example.com", Age: int32Ptr(30)})
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
		assert.Equal(t, "Ann", user.Name)
		require.NotNil(t, user.Age)
		assert.Equal(t, 30, *user.Age)
		assert.False(t, user.CreatedAt.IsZero())

		fetched, err := users.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, fetched)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		user, err := users.CreateUser(ctx, model.UserInput{Name: "Other", Email: "ann@example.com"})
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
		assert.Nil(t, user)

		all, err := users.GetUsers(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := users.CreateUser(cctx, model.UserInput{Name: "Late", Email: "late@example.com"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUserMemoryStorage_GetUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUserMemoryStorage(NewStore())

	for i := 1; i <= 5; i++ {
		_, err := users.CreateUser(ctx, model.UserInput{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
	}

	t.Run("Page in id order", func(t *testing.T) {
		page, err := users.GetUsers(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, uint(2), page[0].ID)
		assert.Equal(t, uint(3), page[1].ID)
	})

	t.Run("Offset beyond the end", func(t *testing.T) {
		page, err := users.GetUsers(ctx, 10, 50)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("Limit larger than the rest", func(t *testing.T) {
		page, err := users.GetUsers(ctx, 10, 3)
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})
}

func TestUserMemoryStorage_UpdateUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserMemoryStorage(NewStore())

	ann, err := users.CreateUser(ctx, model.UserInput{Name: "Ann", Email: "ann@example.com", Age: int32Ptr(30)})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, model.UserInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	t.Run("Only age changes", func(t *testing.T) {
		updated, err := users.UpdateUser(ctx, ann.ID, model.UserUpdateInput{Age: int32Ptr(31)})
		require.NoError(t, err)
		assert.Equal(t, "Ann", updated.Name)
		assert.Equal(t, "ann@example.com", updated.Email)
		assert.Equal(t, 31, *updated.Age)
		assert.Equal(t, ann.CreatedAt, updated.CreatedAt)
	})

	t.Run("Returned users do not alias stored state", func(t *testing.T) {
		*ann.Age = 99
		fetched, err := users.GetUserByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, 31, *fetched.Age)
	})

	t.Run("Email taken by another user", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, ann.ID, model.UserUpdateInput{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
	})

	t.Run("Keeping own email is allowed", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, ann.ID, model.UserUpdateInput{Email: strPtr("ann@example.com")})
		assert.NoError(t, err)
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, 404, model.UserUpdateInput{Name: strPtr("x")})
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestUserMemoryStorage_DeleteUserByID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewUserMemoryStorage(store)
	posts := NewPostMemoryStorage(store)

	ann, err := users.CreateUser(ctx, model.UserInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, model.UserInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = posts.CreatePost(ctx, model.PostInput{Title: "t", Content: "c", AuthorID: int32(bob.ID)})
	require.NoError(t, err)

	t.Run("Successfully delete user", func(t *testing.T) {
		require.NoError(t, users.DeleteUserByID(ctx, ann.ID))

		_, err := users.GetUserByID(ctx, ann.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Deleting twice fails", func(t *testing.T) {
		assert.ErrorIs(t, users.DeleteUserByID(ctx, ann.ID), storage.ErrUserNotFound)
	})

	t.Run("User with posts is kept", func(t *testing.T) {
		assert.ErrorIs(t, users.DeleteUserByID(ctx, bob.ID), storage.ErrUserHasPosts)

		_, err := users.GetUserByID(ctx, bob.ID)
		assert.NoError(t, err)
	})
}

func TestUserMemoryStorage_ConcurrentOperations(t *testing.T) {
	t.Run("Concurrent creation with the same email", func(t *testing.T) {
		ctx := context.Background()
		users := NewUserMemoryStorage(NewStore())

		numGoroutines := 20
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, err := users.CreateUser(ctx, model.UserInput{Name: fmt.Sprintf("user%d", idx), Email: "same@example.com"})
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
			}(i)
		}

		wg.Wait()

		assert.Equal(t, 1, succeeded)
		all, err := users.GetUsers(ctx, 100, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Concurrent creation assigns unique ids", func(t *testing.T) {
		ctx := context.Background()
		users := NewUserMemoryStorage(NewStore())

		numGoroutines := 50
		var wg sync.WaitGroup
		ids := make(chan uint, numGoroutines)

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				user, err := users.CreateUser(ctx, model.UserInput{Name: "u", Email: fmt.Sprintf("u%d@example.com", idx)})
				require.NoError(t, err)
				ids <- user.ID
			}(i)
		}

		wg.Wait()
		close(ids)

		seen := make(map[uint]bool)
		for id := range ids {
			assert.False(t, seen[id], "id %d assigned twice", id)
			seen[id] = true
		}
		assert.Len(t, seen, numGoroutines)
	})
}

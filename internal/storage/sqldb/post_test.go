package sqldb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/models"
)

func TestPostStorage_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful post creation", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)
		authorID := createTestUser(t, db, "Ann", "ann@example.com")

		post, err := s.CreatePost(ctx, model.PostInput{Title: "Hello", Content: "World", AuthorID: int32(authorID)})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, "World", post.Content)
		assert.False(t, post.CreatedAt.IsZero())
		require.NotNil(t, post.Author)
		assert.Equal(t, authorID, post.Author.ID)
		assert.Equal(t, "ann@example.com", post.Author.Email)
	})

	t.Run("Author does not exist", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)

		post, err := s.CreatePost(ctx, model.PostInput{Title: "Hello", Content: "World", AuthorID: 404})
		assert.ErrorIs(t, err, storage.ErrAuthorNotFound)
		assert.Nil(t, post)
		assert.Equal(t, 0, countRows(t, db, &models.Post{}))
	})

	t.Run("Non-positive author id", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)

		_, err := s.CreatePost(ctx, model.PostInput{Title: "Hello", Content: "World", AuthorID: -1})
		assert.ErrorIs(t, err, storage.ErrAuthorNotFound)
	})
}

func TestPostStorage_GetPosts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	s := NewPostStorage(db)

	ann := createTestUser(t, db, "Ann", "ann@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	for i := 1; i <= 5; i++ {
		author := ann
		if i%2 == 0 {
			author = bob
		}
		createTestPost(t, db, author, fmt.Sprintf("Post %d", i), "Content")
	}

	t.Run("Page with embedded authors", func(t *testing.T) {
		posts, err := s.GetPosts(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, posts, 2)

		assert.Equal(t, uint(2), posts[0].ID)
		assert.Equal(t, "Post 2", posts[0].Title)
		require.NotNil(t, posts[0].Author)
		assert.Equal(t, "Bob", posts[0].Author.Name)

		assert.Equal(t, uint(3), posts[1].ID)
		require.NotNil(t, posts[1].Author)
		assert.Equal(t, "Ann", posts[1].Author.Name)
	})

	t.Run("Zero limit", func(t *testing.T) {
		posts, err := s.GetPosts(ctx, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostStorage_GetPostByID(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	s := NewPostStorage(db)

	authorID := createTestUser(t, db, "Ann", "ann@example.com")
	id := createTestPost(t, db, authorID, "Title", "Content")

	t.Run("Existing post", func(t *testing.T) {
		post, err := s.GetPostByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Title", post.Title)
		require.NotNil(t, post.Author)
		assert.Equal(t, authorID, post.Author.ID)
	})

	t.Run("Missing post", func(t *testing.T) {
		post, err := s.GetPostByID(ctx, id+100)
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostStorage_UpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial update keeps content", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)
		authorID := createTestUser(t, db, "Ann", "ann@example.com")
		id := createTestPost(t, db, authorID, "Title", "Content")

		title := "New title"
		post, err := s.UpdatePost(ctx, id, model.PostUpdateInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "New title", post.Title)
		assert.Equal(t, "Content", post.Content)
		require.NotNil(t, post.Author)
		assert.Equal(t, authorID, post.Author.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)

		content := "x"
		post, err := s.UpdatePost(ctx, 1, model.PostUpdateInput{Content: &content})
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostStorage_DeletePostByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Successfully delete post", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)
		authorID := createTestUser(t, db, "Ann", "ann@example.com")
		id := createTestPost(t, db, authorID, "Title", "Content")

		require.NoError(t, s.DeletePostByID(ctx, id))
		assert.Equal(t, 0, countRows(t, db, &models.Post{}))
		assert.Equal(t, 1, countRows(t, db, &models.User{}), "author must survive post deletion")
	})

	t.Run("Not found", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewPostStorage(db)

		assert.ErrorIs(t, s.DeletePostByID(ctx, 3), storage.ErrPostNotFound)
	})
}

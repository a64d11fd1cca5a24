package memory

import (
	"context"
	"time"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/models"
)

type PostMemoryStorage struct {
	store *Store
}

func NewPostMemoryStorage(store *Store) *PostMemoryStorage {
	return &PostMemoryStorage{store: store}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	if input.AuthorID <= 0 {
		return nil, storage.ErrAuthorNotFound
	}

	var created *model.Post
	err := s.store.WithSession(ctx, func(st *Store) error {
		authorID := uint(input.AuthorID)
		if _, exists := st.users[authorID]; !exists {
			return storage.ErrAuthorNotFound
		}

		post := &models.Post{
			ID:        st.nextPostID,
			Title:     input.Title,
			Content:   input.Content,
			AuthorID:  authorID,
			CreatedAt: time.Now().UTC(),
		}
		st.nextPostID++
		st.posts[post.ID] = post

		created = model.PostFromEntity(st.withAuthor(post))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PostMemoryStorage) GetPostByID(ctx context.Context, id uint) (*model.Post, error) {
	var found *model.Post
	err := s.store.WithSession(ctx, func(st *Store) error {
		post, exists := st.posts[id]
		if !exists {
			return storage.ErrPostNotFound
		}
		found = model.PostFromEntity(st.withAuthor(post))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *PostMemoryStorage) GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	limit, offset = storage.Page(limit, offset)

	var posts []*model.Post
	err := s.store.WithSession(ctx, func(st *Store) error {
		all := st.sortedPosts()
		from, to := page(len(all), limit, offset)

		posts = make([]*model.Post, 0, to-from)
		for _, p := range all[from:to] {
			posts = append(posts, model.PostFromEntity(st.withAuthor(p)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostMemoryStorage) UpdatePost(ctx context.Context, id uint, input model.PostUpdateInput) (*model.Post, error) {
	var updated *model.Post
	err := s.store.WithSession(ctx, func(st *Store) error {
		post, exists := st.posts[id]
		if !exists {
			return storage.ErrPostNotFound
		}

		if input.Title != nil {
			post.Title = *input.Title
		}
		if input.Content != nil {
			post.Content = *input.Content
		}

		updated = model.PostFromEntity(st.withAuthor(post))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostMemoryStorage) DeletePostByID(ctx context.Context, id uint) error {
	return s.store.WithSession(ctx, func(st *Store) error {
		if _, exists := st.posts[id]; !exists {
			return storage.ErrPostNotFound
		}
		delete(st.posts, id)
		return nil
	})
}

package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
)

// MockPostStorage implements post.PostStorage for tests. Authors are looked
// up in the given MockUserStorage.
type MockPostStorage struct {
	mu     sync.Mutex
	users  *MockUserStorage
	posts  map[uint]*model.Post
	nextID uint
	err    error
}

func NewMockPostStorage(users *MockUserStorage) *MockPostStorage {
	return &MockPostStorage{
		users:  users,
		posts:  make(map[uint]*model.Post),
		nextID: 1,
	}
}

func (m *MockPostStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockPostStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	if input.AuthorID <= 0 {
		return nil, storage.ErrAuthorNotFound
	}
	author, err := m.users.GetUserByID(ctx, uint(input.AuthorID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}

	p := &model.Post{
		ID:        m.nextID,
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
		Author:    author,
	}
	m.nextID++
	m.posts[p.ID] = p

	cp := *p
	return &cp, nil
}

func (m *MockPostStorage) GetPostByID(_ context.Context, id uint) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostStorage) GetPosts(_ context.Context, limit, offset int) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	ids := make([]uint, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*model.Post
	for i, id := range ids {
		if i < offset || len(result) >= limit {
			continue
		}
		cp := *m.posts[id]
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockPostStorage) UpdatePost(_ context.Context, id uint, input model.PostUpdateInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Content != nil {
		p.Content = *input.Content
	}

	cp := *p
	return &cp, nil
}

func (m *MockPostStorage) DeletePostByID(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, ok := m.posts[id]; !ok {
		return storage.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

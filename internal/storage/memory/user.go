package memory

import (
	"context"
	"time"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/models"
)

type UserMemoryStorage struct {
	store *Store
}

func NewUserMemoryStorage(store *Store) *UserMemoryStorage {
	return &UserMemoryStorage{store: store}
}

func (s *UserMemoryStorage) CreateUser(ctx context.Context, input model.UserInput) (*model.User, error) {
	var created *model.User
	err := s.store.WithSession(ctx, func(st *Store) error {
		for _, u := range st.users {
			if u.Email == input.Email {
				return storage.ErrDuplicateEmail
			}
		}

		user := &models.User{
			ID:        st.nextUserID,
			Name:      input.Name,
			Email:     input.Email,
			Age:       model.IntFromInt32(input.Age),
			CreatedAt: time.Now().UTC(),
		}
		st.nextUserID++
		st.users[user.ID] = user

		created = model.UserFromEntity(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserMemoryStorage) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var found *model.User
	err := s.store.WithSession(ctx, func(st *Store) error {
		user, exists := st.users[id]
		if !exists {
			return storage.ErrUserNotFound
		}
		found = model.UserFromEntity(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *UserMemoryStorage) GetUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	limit, offset = storage.Page(limit, offset)

	var users []*model.User
	err := s.store.WithSession(ctx, func(st *Store) error {
		all := st.sortedUsers()
		from, to := page(len(all), limit, offset)

		users = make([]*model.User, 0, to-from)
		for _, u := range all[from:to] {
			users = append(users, model.UserFromEntity(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserMemoryStorage) UpdateUser(ctx context.Context, id uint, input model.UserUpdateInput) (*model.User, error) {
	var updated *model.User
	err := s.store.WithSession(ctx, func(st *Store) error {
		user, exists := st.users[id]
		if !exists {
			return storage.ErrUserNotFound
		}

		if input.Email != nil {
			for _, u := range st.users {
				if u.ID != id && u.Email == *input.Email {
					return storage.ErrDuplicateEmail
				}
			}
		}

		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Email != nil {
			user.Email = *input.Email
		}
		if input.Age != nil {
			user.Age = model.IntFromInt32(input.Age)
		}

		updated = model.UserFromEntity(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserMemoryStorage) DeleteUserByID(ctx context.Context, id uint) error {
	return s.store.WithSession(ctx, func(st *Store) error {
		if _, exists := st.users[id]; !exists {
			return storage.ErrUserNotFound
		}
		for _, p := range st.posts {
			if p.AuthorID == id {
				return storage.ErrUserHasPosts
			}
		}

		delete(st.users, id)
		return nil
	})
}

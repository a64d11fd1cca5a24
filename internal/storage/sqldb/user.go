package sqldb

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/models"
)

type UserStorage struct {
	db *Database
}

func NewUserStorage(db *Database) *UserStorage {
	return &UserStorage{db: db}
}

func (s *UserStorage) CreateUser(ctx context.Context, input model.UserInput) (*model.User, error) {
	user := &models.User{
		Name:  input.Name,
		Email: input.Email,
		Age:   model.IntFromInt32(input.Age),
	}

	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", input.Email).First(&existing).Error
		if err == nil {
			return storage.ErrDuplicateEmail
		}
		if !gorm.IsRecordNotFoundError(err) {
			return errors.Wrap(err, "could not check email")
		}

		if err := tx.Create(user).Error; err != nil {
			return translateError(err, "could not create user")
		}
		return refreshUser(tx, user)
	})
	if err != nil {
		return nil, err
	}

	return model.UserFromEntity(user), nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user models.User
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		return findUser(tx, id, &user)
	})
	if err != nil {
		return nil, err
	}

	return model.UserFromEntity(&user), nil
}

func (s *UserStorage) GetUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	limit, offset = storage.Page(limit, offset)

	var users []models.User
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		err := tx.Order("id asc").Offset(offset).Limit(limit).Find(&users).Error
		if err != nil {
			return errors.Wrap(err, "could not get users")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]*model.User, 0, len(users))
	for i := range users {
		results = append(results, model.UserFromEntity(&users[i]))
	}
	return results, nil
}

func (s *UserStorage) UpdateUser(ctx context.Context, id uint, input model.UserUpdateInput) (*model.User, error) {
	var user models.User
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		if err := findUser(tx, id, &user); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}
		if input.Age != nil {
			updates["age"] = int(*input.Age)
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return translateError(err, "could not update user")
		}
		return refreshUser(tx, &user)
	})
	if err != nil {
		return nil, err
	}

	return model.UserFromEntity(&user), nil
}

// DeleteUserByID refuses to delete a user that still owns posts.
func (s *UserStorage) DeleteUserByID(ctx context.Context, id uint) error {
	return s.db.WithSession(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := findUser(tx, id, &user); err != nil {
			return err
		}

		var posts int
		err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&posts).Error
		if err != nil {
			return errors.Wrap(err, "could not count user posts")
		}
		if posts > 0 {
			return storage.ErrUserHasPosts
		}

		if err := tx.Delete(&user).Error; err != nil {
			return errors.Wrap(err, "could not delete user")
		}
		return nil
	})
}

func findUser(tx *gorm.DB, id uint, user *models.User) error {
	err := tx.First(user, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return storage.ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "could not get user by id")
	}
	return nil
}

// refreshUser reloads the row to pick up values assigned by the database.
func refreshUser(tx *gorm.DB, user *models.User) error {
	if err := tx.First(user, user.ID).Error; err != nil {
		return errors.Wrap(err, "could not refresh user")
	}
	return nil
}

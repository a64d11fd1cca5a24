package sqldb

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/models"
)

type PostStorage struct {
	db *Database
}

func NewPostStorage(db *Database) *PostStorage {
	return &PostStorage{db: db}
}

func (s *PostStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	if input.AuthorID <= 0 {
		return nil, storage.ErrAuthorNotFound
	}

	post := &models.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: uint(input.AuthorID),
	}

	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		var author models.User
		err := tx.First(&author, post.AuthorID).Error
		if gorm.IsRecordNotFoundError(err) {
			return storage.ErrAuthorNotFound
		}
		if err != nil {
			return errors.Wrap(err, "could not check author")
		}

		if err := tx.Create(post).Error; err != nil {
			return errors.Wrap(err, "could not create post")
		}
		return findPost(tx, post.ID, post)
	})
	if err != nil {
		return nil, err
	}

	return model.PostFromEntity(post), nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, id uint) (*model.Post, error) {
	var post models.Post
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		return findPost(tx, id, &post)
	})
	if err != nil {
		return nil, err
	}

	return model.PostFromEntity(&post), nil
}

// GetPosts loads the page and its authors with a single preload query.
func (s *PostStorage) GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	limit, offset = storage.Page(limit, offset)

	var posts []models.Post
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		err := tx.Preload("Author").Order("id asc").Offset(offset).Limit(limit).Find(&posts).Error
		if err != nil {
			return errors.Wrap(err, "could not get posts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]*model.Post, 0, len(posts))
	for i := range posts {
		results = append(results, model.PostFromEntity(&posts[i]))
	}
	return results, nil
}

func (s *PostStorage) UpdatePost(ctx context.Context, id uint, input model.PostUpdateInput) (*model.Post, error) {
	var post models.Post
	err := s.db.WithSession(ctx, func(tx *gorm.DB) error {
		if err := findPost(tx, id, &post); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Content != nil {
			updates["content"] = *input.Content
		}
		if len(updates) == 0 {
			return nil
		}

		err := tx.Model(&models.Post{ID: post.ID}).Updates(updates).Error
		if err != nil {
			return errors.Wrap(err, "could not update post")
		}
		return findPost(tx, id, &post)
	})
	if err != nil {
		return nil, err
	}

	return model.PostFromEntity(&post), nil
}

func (s *PostStorage) DeletePostByID(ctx context.Context, id uint) error {
	return s.db.WithSession(ctx, func(tx *gorm.DB) error {
		var post models.Post
		err := tx.First(&post, id).Error
		if gorm.IsRecordNotFoundError(err) {
			return storage.ErrPostNotFound
		}
		if err != nil {
			return errors.Wrap(err, "could not get post by id")
		}

		if err := tx.Delete(&post).Error; err != nil {
			return errors.Wrap(err, "could not delete post")
		}
		return nil
	})
}

func findPost(tx *gorm.DB, id uint, post *models.Post) error {
	err := tx.Preload("Author").First(post, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return storage.ErrPostNotFound
	}
	if err != nil {
		return errors.Wrap(err, "could not get post by id")
	}
	return nil
}

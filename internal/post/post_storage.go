package post

import (
	"context"

	"github.com/VitaminP8/gqlapi/graph/model"
)

// PostStorage returns posts with their Author already loaded.
type PostStorage interface {
	CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error)
	GetPostByID(ctx context.Context, id uint) (*model.Post, error)
	GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id uint, input model.PostUpdateInput) (*model.Post, error)
	DeletePostByID(ctx context.Context, id uint) error
}

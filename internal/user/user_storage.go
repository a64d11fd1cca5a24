package user

import (
	"context"

	"github.com/VitaminP8/gqlapi/graph/model"
)

type UserStorage interface {
	CreateUser(ctx context.Context, input model.UserInput) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
	UpdateUser(ctx context.Context, id uint, input model.UserUpdateInput) (*model.User, error)
	DeleteUserByID(ctx context.Context, id uint) error
}

package graph

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/logger"
	"github.com/VitaminP8/gqlapi/internal/storage"
	"github.com/VitaminP8/gqlapi/internal/subscription"
)

// pageArgs receives the SDL defaults (10 and 0) when the client omits them.
// Negative values are normalized by the storages.
type pageArgs struct {
	Limit  int32
	Offset int32
}

func (a pageArgs) values() (int, int) {
	return int(a.Limit), int(a.Offset)
}

type idArgs struct {
	ID int32
}

// toID rejects ids that no row can have.
func toID(id int32) (uint, bool) {
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func (r *Resolver) Hello() string {
	return "Hello, GraphQL!"
}

func (r *Resolver) Users(ctx context.Context, args pageArgs) ([]*UserResolver, error) {
	limit, offset := args.values()

	users, err := r.UserStore.GetUsers(ctx, limit, offset)
	r.Metrics.StoreOp("get_users", err)
	if err != nil {
		return nil, err
	}
	return userResolvers(users), nil
}

// User returns null rather than an error for an unknown id.
func (r *Resolver) User(ctx context.Context, args idArgs) (*UserResolver, error) {
	id, ok := toID(args.ID)
	if !ok {
		return nil, nil
	}

	u, err := r.UserStore.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		r.Metrics.StoreOp("get_user", nil)
		return nil, nil
	}
	r.Metrics.StoreOp("get_user", err)
	if err != nil {
		return nil, err
	}
	return &UserResolver{u: u}, nil
}

func (r *Resolver) Posts(ctx context.Context, args pageArgs) ([]*PostResolver, error) {
	limit, offset := args.values()

	posts, err := r.PostStore.GetPosts(ctx, limit, offset)
	r.Metrics.StoreOp("get_posts", err)
	if err != nil {
		return nil, err
	}
	return postResolvers(posts), nil
}

func (r *Resolver) Post(ctx context.Context, args idArgs) (*PostResolver, error) {
	id, ok := toID(args.ID)
	if !ok {
		return nil, nil
	}

	p, err := r.PostStore.GetPostByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		r.Metrics.StoreOp("get_post", nil)
		return nil, nil
	}
	r.Metrics.StoreOp("get_post", err)
	if err != nil {
		return nil, err
	}
	return &PostResolver{p: p}, nil
}

type createUserArgs struct {
	UserInput model.UserInput
}

func (r *Resolver) CreateUser(ctx context.Context, args createUserArgs) (*UserResolver, error) {
	u, err := r.UserStore.CreateUser(ctx, args.UserInput)
	r.Metrics.StoreOp("create_user", err)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user created", zap.Uint("user_id", u.ID))
	return &UserResolver{u: u}, nil
}

type updateUserArgs struct {
	ID        int32
	Name      *string
	Email     *string
	Age       *int32
	UserInput *model.UserUpdateInput
}

// UpdateUser applies userInput first and the flat arguments on top of it.
func (r *Resolver) UpdateUser(ctx context.Context, args updateUserArgs) (*UserResolver, error) {
	id, ok := toID(args.ID)
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	var input model.UserUpdateInput
	if args.UserInput != nil {
		input = *args.UserInput
	}
	input = input.Merge(model.UserUpdateInput{Name: args.Name, Email: args.Email, Age: args.Age})

	u, err := r.UserStore.UpdateUser(ctx, id, input)
	r.Metrics.StoreOp("update_user", err)
	if err != nil {
		return nil, err
	}
	return &UserResolver{u: u}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args idArgs) (bool, error) {
	id, ok := toID(args.ID)
	if !ok {
		return false, storage.ErrUserNotFound
	}

	err := r.UserStore.DeleteUserByID(ctx, id)
	r.Metrics.StoreOp("delete_user", err)
	if err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info("user deleted", zap.Uint("user_id", id))
	return true, nil
}

type createPostArgs struct {
	PostInput model.PostInput
}

// CreatePost stores the post and then notifies postCreated subscribers.
func (r *Resolver) CreatePost(ctx context.Context, args createPostArgs) (*PostResolver, error) {
	p, err := r.PostStore.CreatePost(ctx, args.PostInput)
	r.Metrics.StoreOp("create_post", err)
	if err != nil {
		return nil, err
	}

	if r.SubscriptionManager != nil {
		r.SubscriptionManager.Publish(p)
	}

	logger.FromContext(ctx).Info("post created", zap.Uint("post_id", p.ID), zap.Uint("author_id", p.AuthorID))
	return &PostResolver{p: p}, nil
}

type updatePostArgs struct {
	ID      int32
	Title   *string
	Content *string
}

func (r *Resolver) UpdatePost(ctx context.Context, args updatePostArgs) (*PostResolver, error) {
	id, ok := toID(args.ID)
	if !ok {
		return nil, storage.ErrPostNotFound
	}

	p, err := r.PostStore.UpdatePost(ctx, id, model.PostUpdateInput{Title: args.Title, Content: args.Content})
	r.Metrics.StoreOp("update_post", err)
	if err != nil {
		return nil, err
	}
	return &PostResolver{p: p}, nil
}

func (r *Resolver) DeletePost(ctx context.Context, args idArgs) (bool, error) {
	id, ok := toID(args.ID)
	if !ok {
		return false, storage.ErrPostNotFound
	}

	err := r.PostStore.DeletePostByID(ctx, id)
	r.Metrics.StoreOp("delete_post", err)
	if err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info("post deleted", zap.Uint("post_id", id))
	return true, nil
}

type countArgs struct {
	Target int32
}

// Count emits 0..target-1: the first value right away, then one per
// CountInterval. The channel is closed after the last value or when ctx ends.
func (r *Resolver) Count(ctx context.Context, args countArgs) (<-chan int32, error) {
	target := args.Target

	ch := make(chan int32)
	done := r.Metrics.SubscriptionStarted("count")

	go func() {
		defer done()
		defer close(ch)

		ticker := time.NewTicker(r.countInterval())
		defer ticker.Stop()

		for i := int32(0); i < target; i++ {
			if i > 0 {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return
				}
			}

			select {
			case ch <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

type postCreatedArgs struct {
	AuthorID *int32
}

func (r *Resolver) PostCreated(ctx context.Context, args postCreatedArgs) (<-chan *PostResolver, error) {
	if r.SubscriptionManager == nil {
		return nil, errors.New("post subscriptions are not enabled")
	}

	authorID := subscription.AllAuthors
	if args.AuthorID != nil {
		id, ok := toID(*args.AuthorID)
		if !ok {
			return nil, storage.ErrAuthorNotFound
		}
		authorID = id
	}

	posts, cancel := r.SubscriptionManager.Subscribe(authorID)
	out := make(chan *PostResolver)
	done := r.Metrics.SubscriptionStarted("postCreated")

	go func() {
		defer done()
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-posts:
				if !ok {
					return
				}
				select {
				case out <- &PostResolver{p: p}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

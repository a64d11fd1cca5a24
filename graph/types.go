package graph

import (
	"time"

	"github.com/VitaminP8/gqlapi/graph/model"
)

// UserResolver resolves the UserType fields.
type UserResolver struct {
	u *model.User
}

func (r *UserResolver) ID() int32 {
	return int32(r.u.ID)
}

func (r *UserResolver) Name() string {
	return r.u.Name
}

func (r *UserResolver) Email() string {
	return r.u.Email
}

func (r *UserResolver) Age() *int32 {
	if r.u.Age == nil {
		return nil
	}
	age := int32(*r.u.Age)
	return &age
}

func (r *UserResolver) CreatedAt() string {
	return formatTime(r.u.CreatedAt)
}

// PostResolver resolves the PostType fields. The author is loaded together
// with the post.
type PostResolver struct {
	p *model.Post
}

func (r *PostResolver) ID() int32 {
	return int32(r.p.ID)
}

func (r *PostResolver) Title() string {
	return r.p.Title
}

func (r *PostResolver) Content() string {
	return r.p.Content
}

func (r *PostResolver) CreatedAt() string {
	return formatTime(r.p.CreatedAt)
}

func (r *PostResolver) Author() *UserResolver {
	if r.p.Author == nil {
		return nil
	}
	return &UserResolver{u: r.p.Author}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userResolvers(users []*model.User) []*UserResolver {
	res := make([]*UserResolver, 0, len(users))
	for _, u := range users {
		res = append(res, &UserResolver{u: u})
	}
	return res
}

func postResolvers(posts []*model.Post) []*PostResolver {
	res := make([]*PostResolver, 0, len(posts))
	for _, p := range posts {
		res = append(res, &PostResolver{p: p})
	}
	return res
}

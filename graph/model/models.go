package model

import (
	"time"

	"github.com/VitaminP8/gqlapi/models"
)

type User struct {
	ID        uint
	Name      string
	Email     string
	Age       *int
	CreatedAt time.Time
}

type Post struct {
	ID        uint
	Title     string
	Content   string
	AuthorID  uint
	CreatedAt time.Time
	Author    *User
}

type UserInput struct {
	Name  string
	Email string
	Age   *int32
}

// UserUpdateInput carries a partial update: nil fields keep the stored value.
type UserUpdateInput struct {
	Name  *string
	Email *string
	Age   *int32
}

type PostInput struct {
	Title    string
	Content  string
	AuthorID int32
}

type PostUpdateInput struct {
	Title   *string
	Content *string
}

// Merge overlays the fields set in other on top of in.
func (in UserUpdateInput) Merge(other UserUpdateInput) UserUpdateInput {
	if other.Name != nil {
		in.Name = other.Name
	}
	if other.Email != nil {
		in.Email = other.Email
	}
	if other.Age != nil {
		in.Age = other.Age
	}
	return in
}

func UserFromEntity(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       copyInt(u.Age),
		CreatedAt: u.CreatedAt,
	}
}

// PostFromEntity maps a post and, when loaded, its author.
func PostFromEntity(p *models.Post) *Post {
	if p == nil {
		return nil
	}
	return &Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		Author:    UserFromEntity(p.Author),
	}
}

func IntFromInt32(v *int32) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	i := *v
	return &i
}

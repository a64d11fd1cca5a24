package models

import "time"

// User is the persisted author of posts. Email is unique across the table.
type User struct {
	ID        uint   `gorm:"primary_key"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"type:varchar(255);unique_index;not null"`
	Age       *int
	CreatedAt time.Time
	Posts     []Post `gorm:"foreignkey:AuthorID"`
}

func (User) TableName() string {
	return "user"
}

type Post struct {
	ID        uint   `gorm:"primary_key"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	AuthorID  uint   `gorm:"type:integer REFERENCES \"user\"(id);not null;index"`
	CreatedAt time.Time
	Author    *User `gorm:"foreignkey:AuthorID"`
}

func (Post) TableName() string {
	return "post"
}

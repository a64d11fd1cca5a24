package subscription

import "github.com/VitaminP8/gqlapi/graph/model"

// AllAuthors subscribes to posts of every author.
const AllAuthors uint = 0

type Manager interface {
	Subscribe(authorID uint) (<-chan *model.Post, func())
	Publish(post *model.Post)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/VitaminP8/gqlapi/models"
)

// Store keeps users and posts in maps. A session holds the store mutex, so
// check-then-write sequences are atomic.
type Store struct {
	mu         sync.Mutex
	users      map[uint]*models.User
	posts      map[uint]*models.Post
	nextUserID uint
	nextPostID uint
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uint]*models.User),
		posts:      make(map[uint]*models.Post),
		nextUserID: 1,
		nextPostID: 1,
	}
}

func (s *Store) WithSession(ctx context.Context, fn func(s *Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s)
}

func (s *Store) sortedUsers() []*models.User {
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *Store) sortedPosts() []*models.Post {
	posts := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

// withAuthor returns a copy of p with Author set from the users map.
func (s *Store) withAuthor(p *models.Post) *models.Post {
	cp := *p
	cp.Author = s.users[p.AuthorID]
	return &cp
}

func page(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

package mocks

import (
	"sync"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/subscription"
)

// MockSubscriptionManager delivers synchronously into buffered channels and
// remembers every published post.
type MockSubscriptionManager struct {
	mu        sync.Mutex
	subs      map[uint][]chan *model.Post
	published []*model.Post
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs: make(map[uint][]chan *model.Post),
	}
}

func (m *MockSubscriptionManager) Subscribe(authorID uint) (<-chan *model.Post, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *model.Post, 16)
	m.subs[authorID] = append(m.subs[authorID], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[authorID]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[authorID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}
	return ch, cancel
}

func (m *MockSubscriptionManager) Publish(post *model.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, post)

	keys := []uint{subscription.AllAuthors}
	if post.AuthorID != subscription.AllAuthors {
		keys = append(keys, post.AuthorID)
	}
	for _, key := range keys {
		for _, sub := range m.subs[key] {
			select {
			case sub <- post:
			default:
			}
		}
	}
}

// Published returns the posts passed to Publish.
func (m *MockSubscriptionManager) Published() []*model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Post(nil), m.published...)
}

// Subscribers returns the number of open subscriptions for authorID.
func (m *MockSubscriptionManager) Subscribers(authorID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[authorID])
}

package subscription

import (
	"sync"

	"github.com/VitaminP8/gqlapi/graph/model"
)

type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[uint][]*subscriber // authorID -> subscribers
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[uint][]*subscriber),
	}
}

// subscriber queues posts without bound and hands them to ch in order from
// its own goroutine, so a slow reader never blocks Publish.
type subscriber struct {
	ch     chan *model.Post
	notify chan struct{}
	done   chan struct{}

	mu    sync.Mutex
	queue []*model.Post
}

func newSubscriber() *subscriber {
	s := &subscriber{
		ch:     make(chan *model.Post),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *subscriber) push(post *model.Post) {
	s.mu.Lock()
	s.queue = append(s.queue, post)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) pump() {
	defer close(s.ch)

	for {
		select {
		case <-s.notify:
		case <-s.done:
			return
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			post := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.ch <- post:
			case <-s.done:
				return
			}
		}
	}
}

// Subscribe registers a subscriber for posts of authorID (AllAuthors for
// every post). The returned func unsubscribes; the channel is closed soon after.
func (m *SubscriptionManager) Subscribe(authorID uint) (<-chan *model.Post, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscriber()
	m.subs[authorID] = append(m.subs[authorID], sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			subscribers := m.subs[authorID]
			for i, s := range subscribers {
				if s == sub {
					m.subs[authorID] = append(subscribers[:i:i], subscribers[i+1:]...)
					break
				}
			}
			if len(m.subs[authorID]) == 0 {
				delete(m.subs, authorID)
			}
			m.mu.Unlock()

			close(sub.done)
		})
	}

	return sub.ch, cancel
}

// Publish queues post for its author's subscribers and for AllAuthors
// subscribers. It does not wait for any of them to read.
func (m *SubscriptionManager) Publish(post *model.Post) {
	m.mu.Lock()
	targets := append([]*subscriber(nil), m.subs[AllAuthors]...)
	if post.AuthorID != AllAuthors {
		targets = append(targets, m.subs[post.AuthorID]...)
	}
	m.mu.Unlock()

	for _, sub := range targets {
		sub.push(post)
	}
}

// Count returns the number of active subscribers for authorID.
func (m *SubscriptionManager) Count(authorID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs[authorID])
}

package app

import (
	"sync"

	"exam-grading-service/internal/domain"
)

// Feed fans newly recorded results of one paper out to live subscribers.
type Feed struct {
	paperID     int64
	mu          sync.RWMutex
	subscribers map[chan domain.StudentResult]struct{}
}

// NewFeed is exported for infrastructure layers that keep feeds.
func NewFeed(paperID int64) *Feed {
	return &Feed{
		paperID:     paperID,
		subscribers: make(map[chan domain.StudentResult]struct{}),
	}
}

// PaperID returns the paper this feed belongs to.
func (f *Feed) PaperID() int64 { return f.paperID }

// IsEmpty reports whether the feed has no subscribers.
func (f *Feed) IsEmpty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers) == 0
}

func (f *Feed) subscribe() (<-chan domain.StudentResult, func()) {
	ch := make(chan domain.StudentResult, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			close(ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel
}

func (f *Feed) publish(result domain.StudentResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- result:
		default:
			// Slow subscriber: drop its oldest pending result.
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

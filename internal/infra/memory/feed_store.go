package memory

import (
	"sync"

	"exam-grading-service/internal/app"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
type FeedStore struct {
	mu    sync.RWMutex
	feeds map[int64]*app.Feed
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		feeds: make(map[int64]*app.Feed),
	}
}

func (s *FeedStore) GetOrCreate(paperID int64) *app.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feed, ok := s.feeds[paperID]; ok {
		return feed
	}
	feed := app.NewFeed(paperID)
	s.feeds[paperID] = feed
	return feed
}

func (s *FeedStore) Get(paperID int64) (*app.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[paperID]
	return feed, ok
}

func (s *FeedStore) DeleteIfEmpty(paperID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[paperID]
	if !ok {
		return
	}
	if feed.IsEmpty() {
		delete(s.feeds, paperID)
	}
}

package app

import (
	"testing"

	"exam-grading-service/internal/domain"
)

func TestFeedDeliversToEverySubscriber(t *testing.T) {
	feed := NewFeed(1)
	a, cancelA := feed.subscribe()
	b, cancelB := feed.subscribe()
	defer cancelB()

	feed.publish(domain.StudentResult{SubmissionID: 10})
	if got := <-a; got.SubmissionID != 10 {
		t.Fatalf("subscriber a got %+v", got)
	}
	if got := <-b; got.SubmissionID != 10 {
		t.Fatalf("subscriber b got %+v", got)
	}

	cancelA()
	cancelA() // idempotent
	if _, ok := <-a; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	if feed.IsEmpty() {
		t.Fatalf("feed still has subscriber b")
	}
}

func TestFeedDropsOldestForSlowSubscriber(t *testing.T) {
	feed := NewFeed(1)
	ch, cancel := feed.subscribe()
	defer cancel()

	total := cap(ch) + 3
	for i := 1; i <= total; i++ {
		feed.publish(domain.StudentResult{SubmissionID: int64(i)})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected full buffer, got %d", len(ch))
	}
	first := <-ch
	if first.SubmissionID != int64(total-cap(ch)+1) {
		t.Fatalf("expected oldest results dropped, first pending is %d", first.SubmissionID)
	}
}

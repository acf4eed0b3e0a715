package memory

import "testing"

func TestFeedStoreLifecycle(t *testing.T) {
	store := NewFeedStore()

	feed := store.GetOrCreate(7)
	if feed == nil || feed.PaperID() != 7 {
		t.Fatalf("expected feed for paper 7")
	}
	if again := store.GetOrCreate(7); again != feed {
		t.Fatalf("expected the same feed on second call")
	}
	if _, ok := store.Get(7); !ok {
		t.Fatalf("expected feed present")
	}

	store.DeleteIfEmpty(7)
	if _, ok := store.Get(7); ok {
		t.Fatalf("expected feed removed when empty")
	}
	store.DeleteIfEmpty(7)
}

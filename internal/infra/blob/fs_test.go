package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exam-grading-service/internal/domain"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Put(ctx, "papers/1/a.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := store.Open(ctx, "papers/1/a.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, "papers/1/a.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "papers/1/a.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, "papers/1/a.pdf"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestFSStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, _ := NewFSStore(root)
	_ = store.Put(context.Background(), "papers/2/b.pdf", strings.NewReader("%PDF-"), 5, "application/pdf")

	entries, err := os.ReadDir(filepath.Join(root, "papers", "2"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.pdf" {
		t.Fatalf("unexpected files %v", entries)
	}
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	store, _ := NewFSStore(t.TempDir())
	for _, key := range []string{"", "/", "../etc/passwd", "papers/../../x"} {
		if err := store.Put(context.Background(), key, strings.NewReader("x"), 1, ""); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestNewFSStoreRequiresRoot(t *testing.T) {
	if _, err := NewFSStore(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

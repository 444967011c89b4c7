package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	return path
}

func TestDocumentStore_NoCacheRereads(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "index.html", "first")
	store := NewDocumentStore(0)

	if got, err := store.Load(path); err != nil || string(got) != "first" {
		t.Fatalf("unexpected load: %q err=%v", got, err)
	}

	writeDocument(t, filepath.Dir(path), "index.html", "second")

	if got, err := store.Load(path); err != nil || string(got) != "second" {
		t.Fatalf("expected fresh content, got %q err=%v", got, err)
	}
}

func TestDocumentStore_CacheExpires(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "index.html", "cached")
	store := NewDocumentStore(50 * time.Millisecond)

	if _, err := store.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writeDocument(t, dir, "index.html", "updated")

	if got, _ := store.Load(path); string(got) != "cached" {
		t.Fatalf("expected cached content, got %q", got)
	}

	time.Sleep(60 * time.Millisecond)

	if got, _ := store.Load(path); string(got) != "updated" {
		t.Fatalf("expected cache entry to expire, got %q", got)
	}
}

func TestDocumentStore_MissingFile(t *testing.T) {
	store := NewDocumentStore(time.Second)

	if _, err := store.Load(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatal("expected an error for a missing document")
	}
}

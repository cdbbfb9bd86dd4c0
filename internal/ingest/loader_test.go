package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_TextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guideline.txt")
	if err := os.WriteFile(path, []byte("first page\fsecond page"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(time.Second, 1<<20)
	pages, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
}

func TestLoad_HTMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guideline.html")
	content := "<html><body><h1>Overview</h1><p>Reference text.</p></body></html>"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(time.Second, 1<<20)
	pages, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pages) == 0 || !strings.Contains(pages[0].Text, "Reference text") {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(time.Second, 1<<20)
	if _, err := loader.Load(context.Background(), "/nonexistent/guideline.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

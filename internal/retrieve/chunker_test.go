package retrieve

import (
	"strings"
	"testing"

	"github.com/neurobridge/neurobridge/internal/model"
)

func TestSplit_BoundsAndOverlap(t *testing.T) {
	chunker := NewChunker(10, 4)
	pages := []model.Page{{Number: 1, Text: strings.Repeat("abcdefghij", 3)}}

	chunks := chunker.Split(pages)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if n := len([]rune(c.Text)); n > 10 {
			t.Errorf("chunk %d exceeds size: %d runes", i, n)
		}
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
	}
	// Step is size-overlap, so consecutive chunks share a suffix/prefix.
	first := []rune(chunks[0].Text)
	second := chunks[1].Text
	if !strings.HasPrefix(second, string(first[6:])) {
		t.Errorf("expected 4-rune overlap between %q and %q", chunks[0].Text, second)
	}
}

func TestSplit_SkipsEmptyPages(t *testing.T) {
	chunker := NewChunker(100, 20)
	pages := []model.Page{
		{Number: 1, Text: "   \n\t  "},
		{Number: 2, Text: "tremor at rest"},
	}

	chunks := chunker.Split(pages)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 2 {
		t.Errorf("expected page 2, got %d", chunks[0].Page)
	}
}

func TestSplit_ShortDocumentSingleChunk(t *testing.T) {
	chunker := NewChunker(800, 200)
	chunks := chunker.Split([]model.Page{{Number: 1, Text: "short text"}})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" {
		t.Errorf("unexpected text: %q", chunks[0].Text)
	}
}

func TestChunkID_ContentDerived(t *testing.T) {
	a := ChunkID("tremor at rest")
	b := ChunkID("tremor at rest")
	c := ChunkID("slowness of movement")

	if a != b {
		t.Error("identical content must hash to identical IDs")
	}
	if a == c {
		t.Error("different content must hash to different IDs")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(a))
	}
}

func TestNewChunker_ClampsOverlap(t *testing.T) {
	chunker := NewChunker(10, 50)
	pages := []model.Page{{Number: 1, Text: strings.Repeat("x", 40)}}
	chunks := chunker.Split(pages)
	// Overlap >= size would loop forever; the clamp keeps chunks advancing.
	if len(chunks) == 0 || len(chunks) > 40 {
		t.Fatalf("unexpected chunk count %d", len(chunks))
	}
}

package retrieve

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Chunker splits document pages into bounded-size, overlapping segments.
// Overlap preserves context across chunk boundaries. Chunk identity is a
// content hash, so re-chunking identical content yields identical IDs.
type Chunker struct {
	size    int // Runes per chunk
	overlap int // Runes shared with the previous chunk
}

// NewChunker creates a chunker. Overlap is clamped below size so every
// chunk advances.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split chunks the pages in document order. Whitespace-only segments are
// dropped. Ordinals are assigned in document order and page numbers carried
// through for deterministic tie-breaking at query time.
func (c *Chunker) Split(pages []model.Page) []model.Chunk {
	var chunks []model.Chunk
	ordinal := 0

	for _, page := range pages {
		runes := []rune(strings.TrimSpace(page.Text))
		if len(runes) == 0 {
			continue
		}

		step := c.size - c.overlap
		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}
			text := strings.TrimSpace(string(runes[start:end]))
			if text == "" {
				continue
			}

			chunks = append(chunks, model.Chunk{
				ID:      ChunkID(text),
				Text:    text,
				Page:    page.Number,
				Ordinal: ordinal,
			})
			ordinal++

			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}

// ChunkID derives a stable chunk identifier from its content
func ChunkID(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:8])
}

package retrieve

import (
	"math"
	"sort"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Index is an immutable in-memory vector index over knowledge chunks.
// Built once at ingestion; concurrent queries need no locking because no
// writer exists after construction. Re-ingestion builds a fresh Index and
// the retriever swaps it in atomically.
type Index struct {
	chunks []model.Chunk
}

// NewIndex builds an index over the given chunks
func NewIndex(chunks []model.Chunk) *Index {
	return &Index{chunks: chunks}
}

// SearchResult is one ranked retrieval hit
type SearchResult struct {
	Chunk model.Chunk
	Score float64 // Cosine similarity to the query
}

// Search returns up to k chunks ranked by descending similarity to the
// query embedding. Ties break by original document order (earlier page,
// then earlier ordinal) so results are deterministic.
func (idx *Index) Search(embedding []float32, k int) []SearchResult {
	if k <= 0 || len(idx.chunks) == 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		results = append(results, SearchResult{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.Page != results[j].Chunk.Page {
			return results[i].Chunk.Page < results[j].Chunk.Page
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Size returns the number of indexed chunks
func (idx *Index) Size() int {
	return len(idx.chunks)
}

// Chunk looks up a chunk by ID
func (idx *Index) Chunk(id string) (model.Chunk, bool) {
	for _, c := range idx.chunks {
		if c.ID == id {
			return c, true
		}
	}
	return model.Chunk{}, false
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

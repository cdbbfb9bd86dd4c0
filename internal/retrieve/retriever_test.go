package retrieve

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/neurobridge/neurobridge/internal/model"
)

// stubEmbedder maps each text to a deterministic vector
type stubEmbedder struct {
	embedCalls int
	batchCalls int
	failAll    bool
}

func (s *stubEmbedder) vector(text string) []float32 {
	v := make([]float32, 8)
	for i, r := range text {
		v[(i+int(r))%8]++
	}
	return v
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.embedCalls++
	if s.failAll {
		return nil, errors.New("embedding service down")
	}
	return s.vector(text), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.failAll {
		return nil, errors.New("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vector(t)
	}
	return out, nil
}

func testRetrievalConfig() model.RetrievalConfig {
	return model.RetrievalConfig{
		ChunkSize:    60,
		ChunkOverlap: 15,
		TopK:         3,
		Retries:      2,
		RetryBackoff: time.Millisecond,
	}
}

var testPages = []model.Page{
	{Number: 1, Text: "Tremor at rest is a common early sign. Rigidity means stiffness of the limbs and trunk."},
	{Number: 2, Text: "Bradykinesia is slowness of movement. Balance problems may appear as the condition progresses."},
	{Number: 3, Text: "Regular exercise, good sleep, and clinical follow-up support quality of life."},
}

func TestQuery_BeforeIngest(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, nil, nil, testRetrievalConfig(), 1)
	_, err := r.Query(context.Background(), "tremor", 3)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, nil, nil, testRetrievalConfig(), 2)

	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	size := r.Size()
	if size == 0 {
		t.Fatal("expected non-empty index")
	}

	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if r.Size() != size {
		t.Errorf("re-ingesting the same document changed index size: %d -> %d", size, r.Size())
	}
}

func TestIngest_FailureKeepsOldSnapshot(t *testing.T) {
	embedder := &stubEmbedder{}
	r := NewRetriever(embedder, nil, nil, testRetrievalConfig(), 1)

	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	size := r.Size()

	embedder.failAll = true
	err := r.Ingest(context.Background(), []model.Page{{Number: 1, Text: "replacement document text"}})
	if err == nil {
		t.Fatal("expected ingest error when embedding fails")
	}
	if r.Size() != size {
		t.Errorf("failed ingest must keep the previous snapshot, size %d -> %d", size, r.Size())
	}
}

func TestQuery_DeterministicRanking(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, nil, nil, testRetrievalConfig(), 1)
	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	first, err := r.Query(context.Background(), "tremor", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(first) == 0 || len(first) > 3 {
		t.Fatalf("expected 1..3 results, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i].Score > first[i-1].Score {
			t.Error("scores must be non-increasing")
		}
	}

	second, err := r.Query(context.Background(), "tremor", 3)
	if err != nil {
		t.Fatalf("repeat query: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("result count changed between identical queries")
	}
	for i := range first {
		if first[i].Chunk.ID != second[i].Chunk.ID {
			t.Errorf("position %d changed between identical queries", i)
		}
	}
}

func TestQuery_EmbedFailureFailsClosed(t *testing.T) {
	embedder := &stubEmbedder{}
	r := NewRetriever(embedder, nil, nil, testRetrievalConfig(), 1)
	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	embedder.failAll = true
	embedder.embedCalls = 0
	results, err, warnings := captureStderr(t, func() ([]SearchResult, error) {
		return r.Query(context.Background(), "tremor", 3)
	})
	if err != nil {
		t.Fatalf("query-time embedding failure must not surface an error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
	if embedder.embedCalls != 2 {
		t.Errorf("expected 2 attempts before failing closed, got %d", embedder.embedCalls)
	}
	if !strings.Contains(warnings, "retrieval degraded") {
		t.Errorf("degradation should be reported on stderr, got %q", warnings)
	}
}

// captureStderr runs fn with os.Stderr redirected and returns what was written
func captureStderr(t *testing.T, fn func() ([]SearchResult, error)) ([]SearchResult, error, string) {
	t.Helper()
	rd, wr, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("pipe: %v", pipeErr)
	}
	old := os.Stderr
	os.Stderr = wr

	results, err := fn()

	os.Stderr = old
	wr.Close()
	data, readErr := io.ReadAll(rd)
	if readErr != nil {
		t.Fatalf("read captured stderr: %v", readErr)
	}
	return results, err, string(data)
}

func TestChunkLookup(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, nil, nil, testRetrievalConfig(), 1)
	if err := r.Ingest(context.Background(), testPages); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	results, err := r.Query(context.Background(), "exercise and sleep", 1)
	if err != nil || len(results) == 0 {
		t.Fatalf("query: %v (%d results)", err, len(results))
	}

	chunk, ok := r.Chunk(results[0].Chunk.ID)
	if !ok {
		t.Fatal("expected chunk lookup to succeed")
	}
	if chunk.Text != results[0].Chunk.Text {
		t.Error("lookup returned a different chunk")
	}
}

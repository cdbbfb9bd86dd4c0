package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/neurobridge/neurobridge/internal/cache"
	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/worker"
)

// embedBatchSize bounds how many chunk texts go into one embeddings call
const embedBatchSize = 64

// Retriever owns the knowledge index lifecycle: one-time ingestion of a
// reference document and similarity queries against the resulting
// read-only index. Retrieval is an enrichment, not a hard dependency:
// query-time embedding failures fail closed with an empty result.
type Retriever struct {
	embedder Embedder
	cache    cache.Cache // Optional; caches embeddings by content hash
	limiter  *worker.Limiter
	chunker  *Chunker
	cfg      model.RetrievalConfig

	index atomic.Pointer[Index]

	embedWorkers int
}

// NewRetriever creates a retriever. cache and limiter may be nil.
func NewRetriever(embedder Embedder, c cache.Cache, limiter *worker.Limiter, cfg model.RetrievalConfig, embedWorkers int) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if embedWorkers <= 0 {
		embedWorkers = 1
	}
	return &Retriever{
		embedder:     embedder,
		cache:        c,
		limiter:      limiter,
		chunker:      NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:          cfg,
		embedWorkers: embedWorkers,
	}
}

// Ingest chunks and embeds the document pages and atomically replaces the
// index. Idempotent: chunk identity is a content hash, so ingesting the
// same document twice produces an index of identical size. Readers never
// observe a half-built index; they see the old snapshot until the new one
// is complete.
func (r *Retriever) Ingest(ctx context.Context, pages []model.Page) error {
	chunks := r.chunker.Split(pages)
	chunks = dedupeChunks(chunks)
	if len(chunks) == 0 {
		return fmt.Errorf("ingest: document produced no chunks")
	}

	if err := r.embedChunks(ctx, chunks); err != nil {
		// A partially embedded index would silently degrade retrieval;
		// keep the previous snapshot instead.
		return fmt.Errorf("ingest: %w", err)
	}

	r.index.Store(NewIndex(chunks))
	return nil
}

// Query returns up to k chunks ranked by descending similarity to the
// query text. Fails with ErrEmptyIndex before ingestion. Embedding-service
// failures after bounded retries yield an empty result, not an error, with
// a warning on standard error.
func (r *Retriever) Query(ctx context.Context, text string, k int) ([]SearchResult, error) {
	idx := r.index.Load()
	if idx == nil || idx.Size() == 0 {
		return nil, ErrEmptyIndex
	}

	if k <= 0 {
		k = r.cfg.TopK
	}

	embedding, err := r.embedWithRetry(ctx, text)
	if err != nil {
		// Fail closed: retrieval is an enrichment. The degradation must
		// still be visible to the operator.
		fmt.Fprintf(os.Stderr, "Warning: retrieval degraded, answering without reference context: %v\n", err)
		return nil, nil
	}

	return idx.Search(embedding, k), nil
}

// Size returns the number of indexed chunks, zero before ingestion
func (r *Retriever) Size() int {
	idx := r.index.Load()
	if idx == nil {
		return 0
	}
	return idx.Size()
}

// Chunk looks up an indexed chunk by ID
func (r *Retriever) Chunk(id string) (model.Chunk, bool) {
	idx := r.index.Load()
	if idx == nil {
		return model.Chunk{}, false
	}
	return idx.Chunk(id)
}

// embedChunks fills in chunk embeddings, consulting the cache first and
// embedding cache misses in concurrent bounded batches.
func (r *Retriever) embedChunks(ctx context.Context, chunks []model.Chunk) error {
	var missIdx []int
	for i := range chunks {
		if embedding, ok := r.cachedEmbedding(chunks[i].Text); ok {
			chunks[i].Embedding = embedding
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return nil
	}

	pool := worker.NewPool(r.embedWorkers)
	pool.Start()

	for start := 0; start < len(missIdx); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batch := missIdx[start:end]
		texts := make([]string, len(batch))
		for i, idx := range batch {
			texts[i] = chunks[idx].Text
		}
		pool.Submit(&embedJob{retriever: r, indices: batch, texts: texts})
	}

	for _, result := range pool.Wait() {
		res := result.(*embedResult)
		if res.err != nil {
			return res.err
		}
		for i, idx := range res.indices {
			chunks[idx].Embedding = res.vectors[i]
			r.storeEmbedding(chunks[idx].Text, res.vectors[i])
		}
	}
	return nil
}

// embedJob embeds one batch of chunk texts on the worker pool
type embedJob struct {
	retriever *Retriever
	indices   []int
	texts     []string
}

type embedResult struct {
	indices []int
	vectors [][]float32
	err     error
}

func (r *embedResult) GetError() error { return r.err }

func (j *embedJob) Execute(ctx context.Context) worker.Result {
	vectors, err := j.retriever.embedBatchWithRetry(ctx, j.texts)
	return &embedResult{indices: j.indices, vectors: vectors, err: err}
}

// embedWithRetry embeds a single text with bounded attempts and backoff
func (r *Retriever) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	if embedding, ok := r.cachedEmbedding(text); ok {
		return embedding, nil
	}

	var lastErr error
	backoff := r.cfg.RetryBackoff
	for attempt := 0; attempt < r.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := r.waitLimiter(ctx); err != nil {
			return nil, err
		}

		embedding, err := r.embedder.Embed(ctx, text)
		if err == nil {
			r.storeEmbedding(text, embedding)
			return embedding, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed after %d attempts: %w", r.cfg.Retries, lastErr)
}

func (r *Retriever) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	backoff := r.cfg.RetryBackoff
	for attempt := 0; attempt < r.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := r.waitLimiter(ctx); err != nil {
			return nil, err
		}

		vectors, err := r.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed batch after %d attempts: %w", r.cfg.Retries, lastErr)
}

func (r *Retriever) waitLimiter(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx, "embeddings")
}

func (r *Retriever) cachedEmbedding(text string) ([]float32, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, found := r.cache.Get(cache.Key(text))
	if !found {
		return nil, false
	}
	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false
	}
	return embedding, true
}

func (r *Retriever) storeEmbedding(text string, embedding []float32) {
	if r.cache == nil {
		return
	}
	if data, err := json.Marshal(embedding); err == nil {
		_ = r.cache.Set(cache.Key(text), data, 0)
	}
}

// dedupeChunks removes duplicate content, keeping the earliest occurrence
func dedupeChunks(chunks []model.Chunk) []model.Chunk {
	seen := make(map[string]bool, len(chunks))
	out := chunks[:0]
	for _, c := range chunks {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

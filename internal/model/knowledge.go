package model

// Page is one page of extracted text from a reference document
type Page struct {
	Number int    `json:"number"` // 1-based page number
	Text   string `json:"text"`
}

// Chunk is a bounded segment of a reference document, embedded for
// similarity search. Created once at ingestion; read-only afterward.
type Chunk struct {
	ID        string    `json:"id"`      // Content hash, stable across re-ingestion
	Text      string    `json:"text"`    // Chunk text
	Page      int       `json:"page"`    // Source page number (1-based)
	Ordinal   int       `json:"ordinal"` // Position in original document order
	Embedding []float32 `json:"-"`       // Embedding vector, not serialized
}

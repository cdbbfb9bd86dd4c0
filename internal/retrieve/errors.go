package retrieve

import "errors"

// ErrEmptyIndex is returned when query runs before a successful ingest.
// This is an ordering bug at the call site, not a transient condition.
var ErrEmptyIndex = errors.New("knowledge index is empty: ingest must run before query")

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neurobridge/neurobridge/internal/model"
)

const defaultUserAgent = "NeuroBridge/1.0 (+https://github.com/neurobridge/neurobridge)"

// Loader turns a knowledge source, a local file or an http(s) URL, into
// document pages ready for chunking.
type Loader struct {
	fetcher *Fetcher
}

// NewLoader creates a loader. Remote fetches honor robots.txt.
func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	robots := NewRobotsChecker(defaultUserAgent, timeout)
	return &Loader{
		fetcher: NewFetcher(timeout, defaultUserAgent, maxBytes, robots),
	}
}

// Load reads the source and returns its pages
func (l *Loader) Load(ctx context.Context, source string) ([]model.Page, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.loadURL(ctx, source)
	}
	return l.loadFile(source)
}

func (l *Loader) loadURL(ctx context.Context, rawURL string) ([]model.Page, error) {
	result, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}

	if isHTML(result.ContentType, result.Body) {
		pages, err := ParseHTML(result.Body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rawURL, err)
		}
		return pages, nil
	}
	return textPages(result.Body), nil
}

func (l *Loader) loadFile(path string) ([]model.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	content := string(data)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		pages, err := ParseHTML(content)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return pages, nil
	default:
		return textPages(content), nil
	}
}

// textPages splits plain text into pages on form feeds. Text extracted
// from PDFs conventionally carries one form feed per page boundary; text
// without form feeds becomes a single page.
func textPages(content string) []model.Page {
	var pages []model.Page
	for _, part := range strings.Split(content, "\f") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pages = append(pages, model.Page{Number: len(pages) + 1, Text: part})
	}
	return pages
}

func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "xhtml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}

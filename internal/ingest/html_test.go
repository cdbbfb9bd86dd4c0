package ingest

import (
	"strings"
	"testing"
)

func TestParseHTML_StripsMarkupAndScripts(t *testing.T) {
	content := `<html><head><style>body{color:red}</style></head><body>
		<script>alert("x")</script>
		<p>Tremor at rest is a common early sign.</p>
		<nav><a href="/">Home</a></nav>
	</body></html>`

	pages, err := ParseHTML(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	text := pages[0].Text
	if !strings.Contains(text, "Tremor at rest") {
		t.Errorf("missing body text: %q", text)
	}
	for _, forbidden := range []string{"alert", "color:red", "Home", "<p>"} {
		if strings.Contains(text, forbidden) {
			t.Errorf("text should not contain %q: %q", forbidden, text)
		}
	}
}

func TestParseHTML_HeadingsStartNewPages(t *testing.T) {
	content := `<html><body>
		<h1>Symptoms</h1><p>Tremor and rigidity.</p>
		<h2>Living Well</h2><p>Exercise and sleep.</p>
	</body></html>`

	pages, err := ParseHTML(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Number != 1 || pages[1].Number != 2 {
		t.Errorf("pages must be numbered sequentially: %d, %d", pages[0].Number, pages[1].Number)
	}
	if !strings.Contains(pages[0].Text, "Symptoms") || !strings.Contains(pages[1].Text, "Living Well") {
		t.Errorf("heading should lead its page: %q / %q", pages[0].Text, pages[1].Text)
	}
}

func TestTextPages_FormFeedBoundaries(t *testing.T) {
	pages := textPages("page one text\fpage two text\f\f  ")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Text != "page one text" || pages[1].Text != "page two text" {
		t.Errorf("unexpected pages: %+v", pages)
	}
}

func TestTextPages_SinglePageWithoutFormFeeds(t *testing.T) {
	pages := textPages("just one block of text")
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("expected a single page, got %+v", pages)
	}
}

func TestIsHTML(t *testing.T) {
	cases := []struct {
		contentType string
		body        string
		want        bool
	}{
		{"text/html; charset=utf-8", "anything", true},
		{"text/plain", "<!DOCTYPE html><html>", true},
		{"text/plain", "plain reference text", false},
		{"", "<HTML><body>x</body></HTML>", true},
	}
	for _, tc := range cases {
		if got := isHTML(tc.contentType, tc.body); got != tc.want {
			t.Errorf("isHTML(%q, %q) = %v, want %v", tc.contentType, tc.body, got, tc.want)
		}
	}
}

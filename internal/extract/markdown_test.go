package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkdownPagesFollowHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "test.md")

	content := `Preface before any header.

# Chapter 1
First chapter content with some words.

## Section
Nested section.

# Chapter 2
Second chapter has more content here.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	pages, err := f.ExtractPages(mdFile)
	if err != nil {
		t.Fatalf("ExtractPages failed: %v", err)
	}

	if len(pages) != 4 {
		t.Fatalf("Expected 4 pages, got %d: %q", len(pages), pages)
	}

	expectedStarts := []string{"Preface", "Chapter 1", "Section", "Chapter 2"}
	for i, page := range pages {
		if !strings.HasPrefix(page, expectedStarts[i]) {
			t.Errorf("Page %d: expected to start with %q, got %q", i, expectedStarts[i], page)
		}
		if strings.Contains(page, "#") {
			t.Errorf("Page %d still carries header markers: %q", i, page)
		}
	}
}

func TestMarkdownNoHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "plain.md")

	content := `This is just plain text.
No headers at all.
Just paragraphs.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	doc, err := Load(mdFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if doc.PageCount() != 1 {
		t.Errorf("Expected 1 page, got %d", doc.PageCount())
	}
	if doc.TotalWords() != 11 {
		t.Errorf("Expected 11 words, got %d", doc.TotalWords())
	}
}

// Package extract turns files on disk into paginated documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ali6parmak/sezi/internal/document"
)

// ErrUnsupported is returned for files no registered format accepts.
var ErrUnsupported = errors.New("unsupported file format")

// Format defines a file format reader that extracts one raw text per page.
type Format interface {
	Name() string
	Extensions() []string
	ExtractPages(filename string) ([]string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

func lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// Supported reports whether filename has a registered extension.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

// Load extracts filename into a document. Text cleaning and word/sentence
// splitting happen here so every format paginates the same way.
func Load(filename string) (*document.Document, error) {
	f := lookup(filename)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), ErrUnsupported)
	}
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}

	raw, err := f.ExtractPages(filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", f.Name(), err)
	}

	doc := &document.Document{
		Name:  filepath.Base(filename),
		Path:  filename,
		Pages: make([]document.Page, 0, len(raw)),
	}
	for i, text := range raw {
		doc.Pages = append(doc.Pages, document.NewPage(i+1, text))
	}
	return doc, nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// FromText builds a document from raw text the way plain text files are
// paginated.
func FromText(name, text string) *document.Document {
	raw := splitPages(text)
	doc := &document.Document{Name: name, Pages: make([]document.Page, 0, len(raw))}
	for i, t := range raw {
		doc.Pages = append(doc.Pages, document.NewPage(i+1, t))
	}
	return doc
}

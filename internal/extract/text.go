package extract

import (
	"os"
	"strings"
)

// wordsPerPage is the page size used for formats without page breaks.
const wordsPerPage = 300

// TextFormat implements Format for plain text. Form feeds are page breaks;
// without them the text is cut into pages of roughly wordsPerPage words at
// line boundaries.
type TextFormat struct{}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt", ".text"} }

func (f *TextFormat) ExtractPages(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return splitPages(string(data)), nil
}

func splitPages(text string) []string {
	if strings.Contains(text, "\f") {
		return strings.Split(text, "\f")
	}
	return paginate(text, wordsPerPage)
}

func paginate(text string, size int) []string {
	var pages []string
	var current strings.Builder
	count := 0

	for _, line := range strings.Split(text, "\n") {
		current.WriteString(line)
		current.WriteString("\n")
		count += len(strings.Fields(line))
		if count >= size {
			pages = append(pages, current.String())
			current.Reset()
			count = 0
		}
	}
	if count > 0 || len(pages) == 0 {
		pages = append(pages, current.String())
	}
	return pages
}

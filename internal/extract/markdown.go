package extract

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files. Every header starts a
// new page.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// heading matches ATX headings, capturing the marker and the title.
var heading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ExtractPages splits the file at headers. Files without headers fall back
// to plain-text pagination.
func (f *MarkdownFormat) ExtractPages(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var pages []string
	var current strings.Builder
	headers := 0

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			pages = append(pages, current.String())
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if match := heading.FindStringSubmatch(line); match != nil {
			flush()
			headers++
			line = strings.TrimSpace(match[2])
		}

		current.WriteString(line)
		current.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if headers == 0 {
		return paginate(strings.Join(pages, "\n"), wordsPerPage), nil
	}
	return pages, nil
}

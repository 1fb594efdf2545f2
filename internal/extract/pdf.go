package extract

import (
	"fmt"
	"math"
	"os"
	"strings"

	"rsc.io/pdf"
)

// PDFFormat implements Format for PDF files, one page per PDF page.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) ExtractPages(filename string) (pages []string, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	// rsc.io/pdf panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := doc.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, joinRuns(p.Content().Text))
	}
	return pages, nil
}

// joinRuns rebuilds text from positioned glyph runs, inserting a space
// where runs are separated horizontally or sit on different lines.
func joinRuns(runs []pdf.Text) string {
	var sb strings.Builder
	var prev *pdf.Text
	for i := range runs {
		t := &runs[i]
		if prev != nil {
			size := math.Max(t.FontSize, 1)
			switch {
			case math.Abs(t.Y-prev.Y) > size*0.5:
				sb.WriteString("\n")
			case t.X-(prev.X+prev.W) > size*0.15:
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
		prev = t
	}
	return sb.String()
}

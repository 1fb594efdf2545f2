package document

import (
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	brokenHyphen  = regexp.MustCompile(`(\w)-\s+(\w)`)
	sentenceBreak = regexp.MustCompile(`[.!?]+\s+`)
)

const periodMarker = "\x00"

// Abbreviations whose trailing period does not end a sentence.
var abbreviations = []string{
	"Mr", "Mrs", "Ms", "Dr", "Prof", "Sr", "Jr", "vs", "etc", "e.g", "i.e",
	"Inc", "Ltd", "Co", "Corp", "Jan", "Feb", "Mar", "Apr", "Jun", "Jul",
	"Aug", "Sep", "Oct", "Nov", "Dec", "St", "Ave", "Blvd",
}

var abbreviationPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(abbreviations))
	for _, abbr := range abbreviations {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(abbr)+`\.`))
	}
	return out
}()

// CleanText collapses whitespace and rejoins words hyphenated across lines.
func CleanText(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return brokenHyphen.ReplaceAllString(text, "${1}${2}")
}

// ExtractWords splits text into words, keeping attached punctuation.
func ExtractWords(text string) []string {
	return strings.Fields(text)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ExtractSentences splits text on terminal punctuation followed by
// whitespace. Common abbreviations are not treated as sentence ends.
func ExtractSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	protected := text
	for i, re := range abbreviationPatterns {
		protected = re.ReplaceAllLiteralString(protected, abbreviations[i]+periodMarker)
	}

	var out []string
	for _, s := range sentenceBreak.Split(protected, -1) {
		s = strings.TrimSpace(strings.ReplaceAll(s, periodMarker, "."))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = []string{strings.TrimSpace(text)}
	}
	return out
}

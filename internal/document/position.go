package document

// WordsBefore returns the number of words on the pages strictly before page n.
func WordsBefore(d *Document, n int) int {
	if n > d.PageCount()+1 {
		n = d.PageCount() + 1
	}
	before := 0
	for p := 1; p < n; p++ {
		before += d.WordsOn(p)
	}
	return before
}

// ToAbsolute converts a page-relative cursor into the number of words that
// precede it in the whole document.
//
// Word mode is exact. Sentence mode places the cursor proportionally within
// the page, at ceil(index*words/sentences), and page mode resolves to the
// start of the page. Both can drift from the true word offset when sentence
// lengths are uneven, but a sentence cursor survives a round trip through
// FromAbsolute unchanged.
func ToAbsolute(d *Document, page, index int, mode Mode) int {
	if d.PageCount() == 0 {
		return 0
	}
	page = clamp(page, 1, d.PageCount())
	before := WordsBefore(d, page)
	words := d.WordsOn(page)
	if words == 0 {
		return before
	}

	switch mode {
	case ModePage:
		return before
	case ModeSentence:
		n := UnitCount(d, page, ModeSentence)
		index = clamp(index, 0, n-1)
		// round up so indexWithin's floor maps the offset back to index
		return before + clamp((index*words+n-1)/n, 0, words-1)
	default:
		return before + clamp(index, 0, words-1)
	}
}

// FromAbsolute resolves an absolute word offset to a page and an index in
// that page's units for mode.
//
// Offset zero lands on the first page that has words, so documents with
// image-only leading pages open on readable text. Offsets past the end clamp
// to the last unit of the last page with words.
func FromAbsolute(d *Document, offset int, mode Mode) (page, index int) {
	total := d.TotalWords()
	if total == 0 {
		return 1, 0
	}
	if offset <= 0 {
		return FirstContentPage(d), 0
	}
	if offset >= total {
		last := LastContentPage(d)
		return last, UnitCount(d, last, mode) - 1
	}

	before := 0
	for p := 1; p <= d.PageCount(); p++ {
		words := d.WordsOn(p)
		if offset < before+words {
			return p, indexWithin(d, p, offset-before, mode)
		}
		before += words
	}

	last := LastContentPage(d)
	return last, UnitCount(d, last, mode) - 1
}

// indexWithin maps a word offset inside page p to a unit index for mode.
func indexWithin(d *Document, p, inPage int, mode Mode) int {
	words := d.WordsOn(p)
	switch mode {
	case ModePage:
		return 0
	case ModeSentence:
		n := UnitCount(d, p, ModeSentence)
		return clamp(inPage*n/words, 0, n-1)
	default:
		return clamp(inPage, 0, words-1)
	}
}

// ClampCursor forces c onto a valid resting position: a content page and an
// index inside its units.
func ClampCursor(d *Document, c Cursor) Cursor {
	if c.Mode == "" {
		c.Mode = ModeWord
	}
	if !d.HasContent() {
		return Cursor{Page: 1, Index: 0, Mode: c.Mode}
	}
	c.Page = NearestContentPage(d, clamp(c.Page, 1, d.PageCount()))
	c.Index = clamp(c.Index, 0, UnitCount(d, c.Page, c.Mode)-1)
	return c
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

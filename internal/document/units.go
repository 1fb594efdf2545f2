package document

// Units returns the addressable units of page n for mode. Pages without
// words yield nothing in every mode; callers skip them.
func Units(d *Document, n int, mode Mode) []string {
	p, ok := d.Page(n)
	if !ok || len(p.Words) == 0 {
		return nil
	}
	switch mode {
	case ModeSentence:
		if len(p.Sentences) == 0 {
			return []string{p.Text}
		}
		return p.Sentences
	case ModePage:
		return []string{p.Text}
	default:
		return p.Words
	}
}

// UnitCount is len(Units(d, n, mode)) without building the slice.
func UnitCount(d *Document, n int, mode Mode) int {
	return len(Units(d, n, mode))
}

// NextContentPage returns the first page after n with words, or 0.
func NextContentPage(d *Document, n int) int {
	if n < 0 {
		n = 0
	}
	for p := n + 1; p <= d.PageCount(); p++ {
		if d.WordsOn(p) > 0 {
			return p
		}
	}
	return 0
}

// PrevContentPage returns the last page before n with words, or 0.
func PrevContentPage(d *Document, n int) int {
	if n > d.PageCount()+1 {
		n = d.PageCount() + 1
	}
	for p := n - 1; p >= 1; p-- {
		if d.WordsOn(p) > 0 {
			return p
		}
	}
	return 0
}

// FirstContentPage returns the first page with words, or 0.
func FirstContentPage(d *Document) int {
	return NextContentPage(d, 0)
}

// LastContentPage returns the last page with words, or 0.
func LastContentPage(d *Document) int {
	return PrevContentPage(d, d.PageCount()+1)
}

// NearestContentPage returns n itself when it has words, otherwise the next
// content page, otherwise the previous one. It returns 0 for an empty document.
func NearestContentPage(d *Document, n int) int {
	if d.WordsOn(n) > 0 {
		return n
	}
	if p := NextContentPage(d, n); p != 0 {
		return p
	}
	return PrevContentPage(d, n)
}

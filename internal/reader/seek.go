package reader

import (
	"math"

	"github.com/ali6parmak/sezi/internal/document"
)

// PointerFraction maps a pointer x coordinate on a bar starting at left and
// width wide to a fraction in [0, 1].
func PointerFraction(x, left, width float64) float64 {
	if width <= 0 || math.IsNaN(x) || math.IsNaN(left) || math.IsNaN(width) {
		return 0
	}
	f := (x - left) / width
	switch {
	case f < 0, math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Seek resolves a fraction of the document to a cursor in mode.
func Seek(doc *document.Document, fraction float64, mode document.Mode) document.Cursor {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	target := int(math.Floor(fraction * float64(doc.TotalWords())))
	page, index := document.FromAbsolute(doc, target, mode)
	return document.Cursor{Page: page, Index: index, Mode: mode}
}

// Seek stops playback and moves to fraction of the way through the document.
func (r *Reader) Seek(fraction float64) {
	r.navigate(func() bool {
		return r.setCursorLocked(Seek(r.doc, fraction, r.cursor.Mode))
	})
}

// SeekPointer seeks to where a pointer at x falls on a bar starting at left.
func (r *Reader) SeekPointer(x, left, width float64) {
	r.Seek(PointerFraction(x, left, width))
}

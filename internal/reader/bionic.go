package reader

import (
	"math"
	"strings"
	"unicode/utf8"
)

// trailingPunctuation never receives highlight styling.
const trailingPunctuation = ".!?;:,"

// BionicSplit is a word divided for eye-guided rendering.
type BionicSplit struct {
	Highlighted string `json:"highlighted"`
	Rest        string `json:"rest"`
	Punctuation string `json:"punctuation"`
}

// String reassembles the original word.
func (b BionicSplit) String() string {
	return b.Highlighted + b.Rest + b.Punctuation
}

// Bionic splits word into a highlighted prefix, the rest of the word and
// its trailing punctuation. Lengths are counted in runes.
func Bionic(word string) BionicSplit {
	clean := strings.TrimRight(word, trailingPunctuation)
	split := BionicSplit{Punctuation: word[len(clean):]}

	runes := []rune(clean)
	n := highlightLength(len(runes))
	split.Highlighted = string(runes[:n])
	split.Rest = string(runes[n:])
	return split
}

func highlightLength(length int) int {
	switch {
	case length == 0:
		return 0
	case length == 1:
		return 1
	case length == 2:
		return 1
	case length == 3:
		return 2
	}
	n := int(math.Ceil(float64(length) * 0.45))
	if n < 1 {
		n = 1
	}
	return n
}

// BionicLine applies Bionic to every whitespace-separated word of text.
func BionicLine(text string) []BionicSplit {
	words := strings.Fields(text)
	out := make([]BionicSplit, 0, len(words))
	for _, w := range words {
		out = append(out, Bionic(w))
	}
	return out
}

// FocusWidth is the rune length of the highlighted prefix of word.
func FocusWidth(word string) int {
	return utf8.RuneCountInString(Bionic(word).Highlighted)
}

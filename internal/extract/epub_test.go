package extract

import (
	"strings"
	"testing"
)

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "chapter body",
			src: `<html><head><title>Ignored</title></head><body>
				<h1>Chapter 1</h1>
				<p>The <em>first</em> paragraph.</p>
				<p>
					A second one
					over two lines.
				</p></body></html>`,
			want: "Chapter 1 The first paragraph. A second one over two lines.",
		},
		{
			name: "script and style dropped",
			src:  `<body><style>p{}</style><p>kept</p><script>var x;</script><noscript>no</noscript></body>`,
			want: "kept",
		},
		{
			name: "nested inline",
			src:  `<div>Some <span>deeply <b>nested</b></span> text.</div>`,
			want: "Some deeply nested text.",
		},
		{name: "empty", src: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(strings.Fields(visibleText(tt.src)), " ")
			if got != tt.want {
				t.Errorf("visibleText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEPUBMissingFile(t *testing.T) {
	if _, err := (&EPUBFormat{}).ExtractPages("does-not-exist.epub"); err == nil {
		t.Error("expected error for missing file")
	}
}

package text

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// HangingIndent prefixes every wrapped continuation line.
const HangingIndent = "    "

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 78

// Wrap word-wraps msg to width printable columns. Continuation lines carry
// HangingIndent. ANSI sequences do not count toward the width. Embedded
// newlines start new paragraphs, and an empty message yields one empty line.
func Wrap(msg string, width int) []string {
	if width <= len(HangingIndent) {
		width = DefaultWidth
	}

	var out []string
	for _, para := range strings.Split(msg, "\n") {
		out = append(out, wrapParagraph(para, width)...)
	}
	return out
}

func wrapParagraph(para string, width int) []string {
	if ansi.PrintableRuneWidth(para) <= width {
		return []string{para}
	}

	first := strings.SplitN(wordwrap.String(para, width), "\n", 2)
	lines := []string{first[0]}
	if len(first) < 2 {
		return lines
	}

	rest := strings.TrimLeft(strings.ReplaceAll(first[1], "\n", " "), " ")
	for _, l := range strings.Split(wordwrap.String(rest, width-len(HangingIndent)), "\n") {
		lines = append(lines, HangingIndent+l)
	}
	return lines
}

// Columns lays items out top-to-bottom in as many columns as fit in width.
func Columns(items []string, width int) []string {
	if len(items) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	longest := 0
	for _, it := range items {
		if w := ansi.PrintableRuneWidth(it); w > longest {
			longest = w
		}
	}
	colWidth := longest + 2
	ncols := width / colWidth
	if ncols < 1 {
		ncols = 1
	}
	nrows := (len(items) + ncols - 1) / ncols

	lines := make([]string, 0, nrows)
	for r := 0; r < nrows; r++ {
		var b strings.Builder
		for c := 0; c < ncols; c++ {
			i := c*nrows + r
			if i >= len(items) {
				break
			}
			it := items[i]
			b.WriteString(it)
			if (c+1)*nrows+r < len(items) {
				b.WriteString(strings.Repeat(" ", colWidth-ansi.PrintableRuneWidth(it)))
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

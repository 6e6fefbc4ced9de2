package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWrap_ShortLineUnchanged(t *testing.T) {
	assert.Equal(t, []string{"You get the rose."}, Wrap("You get the rose.", 78))
}

func TestWrap_EmptyMessageIsBlankLine(t *testing.T) {
	assert.Equal(t, []string{""}, Wrap("", 78))
}

func TestWrap_HangingIndent(t *testing.T) {
	assert.Equal(t, []string{"one two", "    three", "    four"}, Wrap("one two three four", 10))
}

func TestWrap_Paragraphs(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, Wrap("a\n\nb", 78))
}

func TestWrap_IgnoresANSIWidth(t *testing.T) {
	msg := "You get the " + ItemName("rose") + "."
	assert.Equal(t, []string{msg}, Wrap(msg, 17))
}

// Property: wrapping never loses words.
func TestPropertyWrapPreservesWords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 30).Draw(t, "words")
		width := rapid.IntRange(20, 100).Draw(t, "width")
		var got []string
		for _, l := range Wrap(strings.Join(words, " "), width) {
			got = append(got, strings.Fields(l)...)
		}
		assert.Equal(t, words, got)
	})
}

func TestColumns_VerticalFill(t *testing.T) {
	got := Columns([]string{"a", "b", "c", "d", "e"}, 6)
	assert.Equal(t, []string{"a  d", "b  e", "c"}, got)
}

func TestColumns_SingleColumnWhenNarrow(t *testing.T) {
	got := Columns([]string{"inventory", "look"}, 5)
	assert.Equal(t, []string{"inventory", "look"}, got)
}

func TestColumns_Empty(t *testing.T) {
	assert.Nil(t, Columns(nil, 78))
}

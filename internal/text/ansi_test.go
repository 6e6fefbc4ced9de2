package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", Colorize(Red, "danger"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mcoins: 42\033[0m", Colorf(Green, "coins: %d", 42))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "\033[1m\033[31mhall\033[0m", RoomName("hall"))
	assert.Equal(t, "rose", StripANSI(ItemName("rose")))
	assert.Equal(t, "north", StripANSI(ExitName("north")))
	assert.Equal(t, "cat", StripANSI(MobName("cat")))
	assert.Equal(t, "lee", StripANSI(PlayerName("lee")))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
}

func TestStripANSI_NoEscapes(t *testing.T) {
	assert.Equal(t, "plain text", StripANSI("plain text"))
	assert.Equal(t, "", StripANSI(""))
}

// Property: StripANSI(Emphasize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesEmphasize(t *testing.T) {
	colors := []string{Red, Green, Yellow, Cyan, Magenta, White}
	rapid.Check(t, func(t *rapid.T) {
		txt := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		c := colors[rapid.IntRange(0, len(colors)-1).Draw(t, "color")]
		assert.Equal(t, txt, StripANSI(Emphasize(c, txt)))
	})
}

// Property: StripANSI output length <= input length.
func TestPropertyStripANSIOutputShorterOrEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(StripANSI(s)), len(s))
	})
}

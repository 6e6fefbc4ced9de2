package text

import (
	"fmt"
	"strings"
)

// Compose joins message parts with single spaces. A final part that is
// exactly ".", "?" or "!" is attached to the preceding text without a space,
// so Compose("You get the", rose, ".") reads "You get the rose.".
//
// Parts are rendered with fmt.Sprint, so game objects appear through their
// String method.
func Compose(parts ...any) string {
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		strs = append(strs, fmt.Sprint(p))
	}

	punctuation := ""
	if n := len(strs); n > 0 {
		switch strs[n-1] {
		case ".", "?", "!":
			punctuation = strs[n-1]
			strs = strs[:n-1]
		}
	}

	return strings.Join(strs, " ") + punctuation
}

// Indent prefixes every line with n spaces.
func Indent(lines []string, n int) []string {
	if n <= 0 {
		return lines
	}
	pad := strings.Repeat(" ", n)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = pad + l
	}
	return out
}

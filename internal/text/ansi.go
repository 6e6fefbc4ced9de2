// Package text formats game output: ANSI styling, message composition,
// wrapping and column layout.
package text

import "fmt"

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// Emphasize renders text bold in the given color. Object names are shown
// this way: rooms red, exits yellow, items green, mobs magenta and
// players cyan.
func Emphasize(color, text string) string {
	return Bold + color + text + Reset
}

// RoomName, ExitName, ItemName, MobName and PlayerName render an object
// name in the color of its kind.
func RoomName(name string) string { return Emphasize(Red, name) }
func ExitName(name string) string { return Emphasize(Yellow, name) }
func ItemName(name string) string { return Emphasize(Green, name) }
func MobName(name string) string { return Emphasize(Magenta, name) }
func PlayerName(name string) string { return Emphasize(Cyan, name) }

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

package world

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Setting is a named attribute that can be read and written as text. Each
// constructor normalizes the textual value into the attribute's type before
// handing it to the setter, which may reject it.
type Setting struct {
	Name    string
	Default string

	get func() string
	set func(string) error
}

// Value returns the current value as text.
func (s Setting) Value() string { return s.get() }

// Set parses value and assigns it.
func (s Setting) Set(value string) error { return s.set(value) }

// BoolSetting accepts true/false (and the other spellings strconv.ParseBool
// understands, case-insensitively).
func BoolSetting(name string, def bool, get func() bool, set func(bool) error) Setting {
	return Setting{
		Name:    name,
		Default: strconv.FormatBool(def),
		get:     func() string { return strconv.FormatBool(get()) },
		set: func(v string) error {
			b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
			if err != nil {
				return fmt.Errorf("%w: %s must be true or false", ErrInvalidSetting, name)
			}
			return set(b)
		},
	}
}

// IntSetting accepts integers and truncates decimal input.
func IntSetting(name string, def int, get func() int, set func(int) error) Setting {
	return Setting{
		Name:    name,
		Default: strconv.Itoa(def),
		get:     func() string { return strconv.Itoa(get()) },
		set: func(v string) error {
			v = strings.TrimSpace(v)
			n, err := strconv.Atoi(v)
			if err != nil {
				f, ferr := strconv.ParseFloat(v, 64)
				if ferr != nil {
					return fmt.Errorf("%w: %s must be a number", ErrInvalidSetting, name)
				}
				n = int(f)
			}
			return set(n)
		},
	}
}

// DurationSetting is expressed in seconds, fractional values allowed.
func DurationSetting(name string, def time.Duration, get func() time.Duration, set func(time.Duration) error) Setting {
	format := func(d time.Duration) string {
		return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	}
	return Setting{
		Name:    name,
		Default: format(def),
		get:     func() string { return format(get()) },
		set: func(v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%w: %s must be a number of seconds", ErrInvalidSetting, name)
			}
			return set(time.Duration(f * float64(time.Second)))
		},
	}
}

// StringSetting stores the text as given.
func StringSetting(name, def string, get func() string, set func(string) error) Setting {
	return Setting{Name: name, Default: def, get: get, set: set}
}

// SettingOf returns the named setting declared by o.
func SettingOf(o Object, name string) (Setting, bool) {
	for _, s := range o.Settings() {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// GetSetting reads a declared setting.
func GetSetting(o Object, name string) (string, error) {
	s, ok := SettingOf(o, name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSetting, name)
	}
	return s.Value(), nil
}

// SetSetting writes a declared setting.
func SetSetting(o Object, name, value string) error {
	s, ok := SettingOf(o, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSetting, name)
	}
	if err := s.Set(value); err != nil {
		return err
	}
	if w := o.Core().w; w != nil {
		w.settingChanged(o)
	}
	return nil
}

// UnsetSetting restores a declared setting to its default.
func UnsetSetting(o Object, name string) error {
	s, ok := SettingOf(o, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSetting, name)
	}
	return SetSetting(o, name, s.Default)
}

func nonNegative(name string, set func(int)) func(int) error {
	return func(n int) error {
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, name)
		}
		set(n)
		return nil
	}
}

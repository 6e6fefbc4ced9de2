package world

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tzmud/internal/text"
)

// Client delivers output to a connected player.
type Client interface {
	// Message sends one line, indented by indent spaces.
	Message(msg string, indent int)
	// Lines sends several lines, indented by indent spaces.
	Lines(lines []string, indent int)
	// Close ends the connection.
	Close()
}

// Player is a character controlled by a connected user.
type Player struct {
	Character

	PasswordHash []byte
	Prefs        map[string]string
	LoggedIn     bool
	Created      time.Time
	LastLogin    time.Time
}

// AsPlayer returns p.
func (p *Player) AsPlayer() *Player { return p }

// Kind implements Object.
func (p *Player) Kind() Kind { return KindPlayer }

func (p *Player) String() string { return text.PlayerName(p.Name) }

// SetPassword stores a bcrypt hash of password.
func (p *Player) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.w.passwordCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	p.touch()
	p.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (p *Player) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)) == nil
}

// SetLoggedIn records a login or logout.
func (p *Player) SetLoggedIn(v bool) {
	p.touch()
	p.LoggedIn = v
	if v {
		p.LastLogin = p.w.clock()
	}
}

// Pref returns a user preference.
func (p *Player) Pref(name string) (string, bool) {
	v, ok := p.Prefs[name]
	return v, ok
}

// SetPref stores a user preference.
func (p *Player) SetPref(name, value string) {
	p.touch()
	if p.Prefs == nil {
		p.Prefs = map[string]string{}
	}
	p.Prefs[name] = value
}

// UnsetPref removes a user preference.
func (p *Player) UnsetPref(name string) bool {
	if _, ok := p.Prefs[name]; !ok {
		return false
	}
	p.touch()
	delete(p.Prefs, name)
	return true
}

// PrefNames returns the preference names in sorted order.
func (p *Player) PrefNames() []string {
	return slices.Sorted(maps.Keys(p.Prefs))
}

// IsWizard reports wizard privilege. Admins are wizards.
func (p *Player) IsWizard() bool { return p.w.IsWizard(p) }

// IsAdmin reports admin privilege.
func (p *Player) IsAdmin() bool { return p.w.IsAdmin(p) }

// Client returns the player's connection.
func (p *Player) Client() (Client, bool) {
	c, ok := p.w.clients[p.ID]
	return c, ok
}

// Message sends a composed line to the player's connection.
func (p *Player) Message(parts ...any) {
	if c, ok := p.Client(); ok {
		c.Message(text.Compose(parts...), 0)
	}
}

// Indented sends a composed line indented by indent spaces.
func (p *Player) Indented(indent int, parts ...any) {
	if c, ok := p.Client(); ok {
		c.Message(text.Compose(parts...), indent)
	}
}

// Lines sends several lines to the player's connection.
func (p *Player) Lines(lines []string, indent int) {
	if c, ok := p.Client(); ok {
		c.Lines(lines, indent)
	}
}

// Info adds account details.
func (p *Player) Info() []string {
	lines := p.Character.Info()
	if p.IsAdmin() {
		lines = append(lines, "Admin")
	} else if p.IsWizard() {
		lines = append(lines, "Wizard")
	}
	if p.LoggedIn {
		lines = append(lines, "Logged in")
	}
	if !p.Created.IsZero() {
		lines = append(lines, "Created: "+p.Created.Format(time.RFC1123))
	}
	if !p.LastLogin.IsZero() {
		lines = append(lines, "Last login: "+p.LastLogin.Format(time.RFC1123))
	}
	return lines
}

// Destroy disconnects the player before removing it.
func (p *Player) Destroy() {
	if c, ok := p.Client(); ok {
		c.Close()
		delete(p.w.clients, p.ID)
	}
	p.Character.Destroy()
}

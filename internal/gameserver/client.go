package gameserver

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/session"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/observability"
	"github.com/cory-johannsen/tzmud/internal/text"
)

// PrefANSI is the player preference that turns colour on or off.
const PrefANSI = "ansi"

// minWrap keeps deeply indented output readable.
const minWrap = 20

// client delivers a player's output to its session outbox. It runs on the
// engine goroutine, which is what makes reading the player's preferences
// safe.
type client struct {
	world  *world.World
	player world.ID
	sess   *session.Session
	out    Output
	logger *zap.Logger
}

// Output holds the formatting applied to everything sent to a connection.
type Output struct {
	// Width is the wrap column. Zero disables wrapping.
	Width int
	// ANSI is the colour setting of players without a preference.
	ANSI bool
}

// Format prepares msg for a terminal: colour kept or stripped, wrapped with
// a hanging indent and shifted right by indent spaces.
func (o Output) Format(msg string, indent int, colour bool) []string {
	if !colour {
		msg = text.StripANSI(msg)
	}
	var lines []string
	if o.Width <= 0 {
		lines = strings.Split(msg, "\n")
	} else {
		lines = text.Wrap(msg, max(o.Width-indent, minWrap))
	}
	if indent > 0 {
		lines = text.Indent(lines, indent)
	}
	return lines
}

// colour reads the preference through the world because an aborted
// transaction replaces the player object.
func (c *client) colour() bool {
	p, ok := c.world.Player(c.player)
	if !ok {
		return c.out.ANSI
	}
	if v, ok := p.Pref(PrefANSI); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return c.out.ANSI
}

// Message implements world.Client.
func (c *client) Message(msg string, indent int) {
	c.push(c.out.Format(msg, indent, c.colour()))
}

// Lines implements world.Client.
func (c *client) Lines(lines []string, indent int) {
	colour := c.colour()
	var out []string
	for _, l := range lines {
		out = append(out, c.out.Format(l, indent, colour)...)
	}
	c.push(out)
}

func (c *client) push(lines []string) {
	if err := c.sess.Outbox.Push(lines...); err != nil {
		c.logger.Warn("dropping output",
			observability.Object(int64(c.player)),
			zap.Int("lines", len(lines)),
			zap.Error(err),
		)
	}
}

// Close implements world.Client by closing the connection.
func (c *client) Close() {
	c.sess.Kick()
}

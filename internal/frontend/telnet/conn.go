package telnet

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// Telnet commands (RFC 854).
const (
	SE   byte = 240 // end of subnegotiation
	NOP  byte = 241
	GA   byte = 249 // go ahead
	SB   byte = 250 // begin subnegotiation
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255 // interpret as command
)

// Telnet options.
const (
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptNAWS            byte = 31
	OptLinemode        byte = 34
)

type decodeState int

const (
	stData decodeState = iota
	stCommand
	stOption
	stSub
	stSubIAC
)

// negotiation is an option request received from the peer.
type negotiation struct {
	verb, opt byte
}

// decoder strips telnet commands from a byte stream. Its state survives
// between calls, so a command split across two reads is still removed.
type decoder struct {
	state decodeState
	verb  byte
}

// step consumes b. It returns b as data when ok is set, and any option
// request completed by b.
func (d *decoder) step(b byte) (data byte, ok bool, neg negotiation) {
	switch d.state {
	case stCommand:
		d.state = stData
		switch b {
		case IAC:
			return IAC, true, neg
		case WILL, WONT, DO, DONT:
			d.verb, d.state = b, stOption
		case SB:
			d.state = stSub
		}
	case stOption:
		d.state = stData
		return 0, false, negotiation{verb: d.verb, opt: b}
	case stSub:
		if b == IAC {
			d.state = stSubIAC
		}
	case stSubIAC:
		if b == SE {
			d.state = stData
		} else {
			d.state = stSub
		}
	default:
		if b == IAC {
			d.state = stCommand
			return 0, false, neg
		}
		return b, true, neg
	}
	return 0, false, neg
}

// FilterIAC removes telnet commands from input. An escaped IAC becomes one
// 0xFF byte; an unfinished trailing command is dropped.
func FilterIAC(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if c, ok, _ := d.step(b); ok {
			out = append(out, c)
		}
	}
	return out
}

// Conn is a telnet connection read and written a line at a time.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	dec    decoder
	// skipLF is set after a line ended at CR, so a following LF is not read
	// as an empty line.
	skipLF bool

	readTimeout  time.Duration
	writeTimeout time.Duration

	wmu    sync.Mutex
	closed sync.Once
}

// NewConn wraps raw. A positive readTimeout bounds the wait for each input
// line, which is how idle clients are detected.
//
// Precondition: raw is open.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Negotiate offers to suppress go-ahead, the only option the server wants
// from the start.
func (c *Conn) Negotiate() error {
	return c.send([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its line ending. Telnet
// commands and control characters other than tab are dropped. Option
// requests the server did not make are refused.
//
// Postcondition: on error the partial line read so far is returned.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		data, ok, neg := c.dec.step(b)
		if neg.verb != 0 {
			if err := c.answer(neg); err != nil {
				return line.String(), err
			}
		}
		if !ok {
			continue
		}

		skip := c.skipLF
		c.skipLF = false
		switch {
		case data == '\n' && skip:
		case data == '\n':
			return line.String(), nil
		case data == '\r':
			c.skipLF = true
			return line.String(), nil
		case data < ' ' && data != '\t':
		default:
			line.WriteByte(data)
		}
	}
}

// answer refuses any option the peer offers or asks for, except the two
// the server itself negotiates.
func (c *Conn) answer(n negotiation) error {
	switch n.verb {
	case DO:
		if n.opt == OptSuppressGoAhead || n.opt == OptEcho {
			return nil
		}
		return c.send([]byte{IAC, WONT, n.opt})
	case WILL:
		return c.send([]byte{IAC, DONT, n.opt})
	}
	return nil
}

// ReadPassword reads a line while the client's local echo is off, then
// restores echo and moves the cursor past the hidden input.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.send([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.send([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.WriteLines([]string{text})
}

// WriteLines sends every line, each followed by CRLF, in one write. A 0xFF
// byte in text is escaped.
func (c *Conn) WriteLines(lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		writeEscaped(&buf, l)
		buf.WriteString("\r\n")
	}
	return c.send(buf.Bytes())
}

// WritePrompt sends text with no line ending.
func (c *Conn) WritePrompt(text string) error {
	var buf bytes.Buffer
	writeEscaped(&buf, text)
	return c.send(buf.Bytes())
}

func writeEscaped(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == IAC {
			buf.WriteByte(IAC)
		}
		buf.WriteByte(s[i])
	}
}

func (c *Conn) send(p []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close closes the connection. Closing twice is harmless.
func (c *Conn) Close() error {
	var err error
	c.closed.Do(func() { err = c.raw.Close() })
	return err
}

// RemoteAddr is the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

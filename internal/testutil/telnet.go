package testutil

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cory-johannsen/tzmud/internal/frontend/telnet"
)

// TelnetClient plays a player's terminal in end-to-end tests. A background
// reader collects server output with telnet commands removed.
type TelnetClient struct {
	t    *testing.T
	conn net.Conn

	mu      sync.Mutex
	out     strings.Builder
	readErr error
	// consumed is how much of out earlier ReadUntil calls have matched.
	consumed int
	more     chan struct{}
}

// NewTelnetClient dials addr. The connection is closed when the test ends.
//
// Precondition: a server is listening on addr.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}
	c := &TelnetClient{t: t, conn: conn, more: make(chan struct{}, 1)}
	t.Cleanup(c.Close)
	go c.read()
	return c
}

func (c *TelnetClient) read() {
	buf := make([]byte, 1024)
	for {
		n, err := c.conn.Read(buf)
		c.mu.Lock()
		c.out.Write(telnet.FilterIAC(buf[:n]))
		if err != nil {
			c.readErr = err
		}
		c.mu.Unlock()
		select {
		case c.more <- struct{}{}:
		default:
		}
		if err != nil {
			return
		}
	}
}

// ReadUntil waits for substr to appear in output not yet matched by an
// earlier call. It returns that output up to and including substr.
//
// Postcondition: fails the test when timeout passes or the server hangs up
// first.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		pending := c.out.String()[c.consumed:]
		if i := strings.Index(pending, substr); i >= 0 {
			c.consumed += i + len(substr)
			c.mu.Unlock()
			return pending[:i+len(substr)]
		}
		err := c.readErr
		c.mu.Unlock()
		if err != nil {
			c.t.Fatalf("waiting for %q: connection ended (%v) after %q", substr, err, pending)
		}

		select {
		case <-c.more:
		case <-deadline.C:
			c.t.Fatalf("waiting for %q: timed out after %q", substr, pending)
		}
	}
}

// Send writes text as one input line.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(text + "\r\n")); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Transcript is everything the server has sent so far.
func (c *TelnetClient) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

// Close hangs up.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}

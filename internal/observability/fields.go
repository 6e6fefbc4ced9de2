package observability

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn identifies a client connection.
func Conn(id uuid.UUID) zap.Field { return zap.Stringer("conn", id) }

// Remote is the peer address of a connection.
func Remote(addr string) zap.Field { return zap.String("remote_addr", addr) }

// Player names the player bound to a connection.
func Player(name string) zap.Field { return zap.String("player", name) }

// Object identifies a world object by id.
func Object(id int64) zap.Field { return zap.Int64("object", id) }

// Generation numbers server restarts within one process.
func Generation(n int) zap.Field { return zap.Int("generation", n) }

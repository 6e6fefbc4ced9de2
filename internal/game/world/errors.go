package world

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrNotContainer is returned when an object cannot hold items.
	ErrNotContainer = errors.New("not a container")
	// ErrNoSetting is returned for a setting the object does not declare.
	ErrNoSetting = errors.New("no such setting")
	// ErrInvalidSetting is returned when a setting value is rejected.
	ErrInvalidSetting = errors.New("invalid setting value")
	// ErrNameTaken is returned when a player name is already registered.
	ErrNameTaken = errors.New("name already taken")
	// ErrTxActive is returned by Begin while a transaction is open.
	ErrTxActive = errors.New("transaction already active")
	// ErrNoClass is returned for an unregistered class name.
	ErrNoClass = errors.New("no such class")
	// ErrNoExits is returned when a room refuses a new exit.
	ErrNoExits = errors.New("room does not accept exits")
	// ErrBrokenExit is returned when an exit has no destination.
	ErrBrokenExit = errors.New("exit has no destination")
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

package session

import "errors"

var (
	// ErrNotFound is returned by stores when a session does not exist or has
	// expired server-side.
	ErrNotFound = errors.New("session not found")
	// ErrIDGeneration is returned when session ID generation fails.
	ErrIDGeneration = errors.New("failed to generate session id")
	// ErrCreateSession is returned when persisting a new session fails.
	ErrCreateSession = errors.New("failed to create session")
	// ErrDestroySession is returned when deleting a session from the store fails.
	ErrDestroySession = errors.New("failed to destroy session")
)

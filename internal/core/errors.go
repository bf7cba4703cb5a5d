package core

import "errors"

var (
	// ErrHubStopped is returned by hub calls made after Run has exited.
	ErrHubStopped = errors.New("hub stopped")
	// ErrConnClosed is returned by Conn.Send once the connection is closing.
	ErrConnClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned by Conn.Send when the outbound queue is full.
	ErrSlowConsumer = errors.New("slow consumer")
)

// internalErrorMessage is the only text a client ever sees for a failed message.
const internalErrorMessage = "internal error"

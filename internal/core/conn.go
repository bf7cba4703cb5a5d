package core

// Conn is the transport handle held by a session.
//
// Implementations must not block: Send enqueues or fails, Ping schedules a probe
// and calls pong from another goroutine once the peer answers, Close and
// Terminate only start the shutdown of the underlying connection.
type Conn interface {
	Send(payload []byte) error
	Close()
	Terminate()
	Ping(pong func())
	Open() bool
}

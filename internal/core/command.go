package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin binds the session to a room.
	CommandJoin CommandKind = iota
	// CommandPosition updates the session's position and display attributes.
	CommandPosition
	// CommandChat relays a chat line to the session's room.
	CommandChat
	// CommandLeave asks the server to close the connection.
	CommandLeave
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoin:
		return "join"
	case CommandPosition:
		return "position"
	case CommandChat:
		return "chat"
	case CommandLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Command is a validated, sanitized client request.
// Optional attributes are nil when the client did not send a usable value.
type Command struct {
	Kind CommandKind

	Name string
	Room string
	Text string

	Avatar *string
	Color  *string
	X      *float64
	Y      *float64
	Size   *float64
}

// apply copies the optional display attributes onto s.
func (c *Command) apply(s *Session) {
	if c.X != nil {
		s.X = *c.X
	}
	if c.Y != nil {
		s.Y = *c.Y
	}
	if c.Size != nil {
		s.Size = *c.Size
	}
	if c.Color != nil {
		s.Color = *c.Color
	}
	if c.Avatar != nil {
		s.Avatar = *c.Avatar
	}
}

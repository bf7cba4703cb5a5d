package proto

// Inbound message types sent by clients.
const (
	InboundTypeJoin        = "join"
	InboundTypePosition    = "position-update"
	InboundTypePositionAlt = "pos"
	InboundTypeChat        = "chat"
	InboundTypeLeave       = "leave"
)

// Outbound message types sent by the server.
const (
	OutboundTypeID           = "id"
	OutboundTypePlayers      = "players"
	OutboundTypeJoined       = "joined"
	OutboundTypePlayerJoined = "playerJoined"
	OutboundTypePos          = "pos"
	OutboundTypeChat         = "chat"
	OutboundTypePlayerLeft   = "playerLeft"
	OutboundTypeError        = "error"
)

// Envelope is the minimal shape every inbound message must have.
type Envelope struct {
	Type string `json:"type"`
}

// Player is the public view of a session shared with room peers.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar string  `json:"avatar"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
}

// ID is sent once, right after the connection is registered.
type ID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Players is the room roster delivered to a joining session.
type Players struct {
	Type    string   `json:"type"`
	Players []Player `json:"players"`
}

// Joined acknowledges a processed join.
type Joined struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// PlayerJoined notifies room peers about a new member.
type PlayerJoined struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// Pos carries a member's current public attributes after a position update.
type Pos struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Avatar string  `json:"avatar"`
	Name   string  `json:"name"`
}

// Chat is a chat line relayed to a room.
type Chat struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// PlayerLeft notifies room peers that a member is gone.
type PlayerLeft struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Error reports an unexpected failure while handling one message.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewID builds the id announcement.
func NewID(id string) ID { return ID{Type: OutboundTypeID, ID: id} }

// NewPlayers builds a roster message. A nil roster is sent as an empty list.
func NewPlayers(players []Player) Players {
	if players == nil {
		players = []Player{}
	}
	return Players{Type: OutboundTypePlayers, Players: players}
}

// NewJoined builds a join acknowledgement.
func NewJoined(room string) Joined { return Joined{Type: OutboundTypeJoined, Room: room} }

// NewPlayerJoined builds a member-joined notice.
func NewPlayerJoined(p Player) PlayerJoined {
	return PlayerJoined{Type: OutboundTypePlayerJoined, Player: p}
}

// NewPos builds a position event from a player view.
func NewPos(p Player) Pos {
	return Pos{
		Type:   OutboundTypePos,
		ID:     p.ID,
		X:      p.X,
		Y:      p.Y,
		Size:   p.Size,
		Color:  p.Color,
		Avatar: p.Avatar,
		Name:   p.Name,
	}
}

// NewChat builds a chat event.
func NewChat(id, name, text string) Chat {
	return Chat{Type: OutboundTypeChat, ID: id, Name: name, Text: text}
}

// NewPlayerLeft builds a member-left notice.
func NewPlayerLeft(id string) PlayerLeft { return PlayerLeft{Type: OutboundTypePlayerLeft, ID: id} }

// NewError builds an error notice.
func NewError(msg string) Error { return Error{Type: OutboundTypeError, Message: msg} }

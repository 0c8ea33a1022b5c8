package types

// ClientMessage is the single client->authority envelope.
// Types: "createRoom" | "joinRoom" | "numberClicked" | "updateLines"
type ClientMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Name   string `json:"name,omitempty"`
	Number int    `json:"number,omitempty"`
	Lines  int    `json:"lines,omitempty"`
}

// ServerMessage is the single authority->client envelope.
// Types: "createAck" | "joinAck" | "gameStart" | "markNumber" |
// "gameResult" | "error"
type ServerMessage struct {
	Type         string   `json:"type"`
	OK           bool     `json:"ok"`
	Reason       string   `json:"reason,omitempty"`
	Version      int      `json:"version,omitempty"`
	AssignedSeat int      `json:"assignedSeat,omitempty"`
	PlayerNames  []string `json:"playerNames,omitempty"`
	Number       int      `json:"number,omitempty"`
	Name         string   `json:"name,omitempty"`
	Seq          int      `json:"seq,omitempty"`
	Result       string   `json:"result,omitempty"` // "win" | "lose"
	Actor        string   `json:"actor,omitempty"`
	Error        string   `json:"error,omitempty"`
}

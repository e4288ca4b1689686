package domain

import (
	"encoding/json"
	"fmt"
)

// Outbound message types.
const (
	MsgConnect        = "connect"
	MsgWelcome        = "welcome"
	MsgDocumentOpen   = "document.open"
	MsgDocumentEdit   = "document.edit"
	MsgDocumentLoaded = "document.loaded"
	MsgClientJoin     = "client.join"
	MsgClientLeave    = "client.leave"
	MsgError          = "error"
)

// Message is one outbound message. On the wire the payload fields are
// flattened next to "type".
type Message struct {
	Type    string
	Payload any
}

// MarshalJSON encodes the message as a single flat object.
func (m Message) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if m.Payload != nil {
		raw, err := json.Marshal(m.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s payload: %w", m.Type, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s payload is not an object: %w", m.Type, err)
		}
	}
	fields["type"] = m.Type
	return json.Marshal(fields)
}

// OpenPayload describes the document a session just joined.
type OpenPayload struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	IDPrefix string  `json:"id_prefix"`
}

// EditPayload carries one edit command.
type EditPayload struct {
	Command CommandKind `json:"command"`
	Data    Command     `json:"data"`
}

// LeavePayload identifies the user that left.
type LeavePayload struct {
	ID int64 `json:"id"`
}

// ErrorPayload reports a problem to the client.
type ErrorPayload struct {
	Msg string `json:"msg"`
}

// NewOpenMessage builds document.open for d.
func NewOpenMessage(d *Document, idPrefix string) Message {
	return Message{Type: MsgDocumentOpen, Payload: OpenPayload{
		ID:       d.PublicID,
		URL:      d.URL,
		Width:    d.Timeline.Width,
		Height:   d.Timeline.Height,
		FPS:      d.Timeline.FPS,
		Duration: d.Timeline.Duration,
		Start:    d.Timeline.Start,
		IDPrefix: idPrefix,
	}}
}

// NewEditMessage wraps cmd in a document.edit message.
func NewEditMessage(cmd Command) Message {
	return Message{Type: MsgDocumentEdit, Payload: EditPayload{Command: cmd.Kind(), Data: cmd}}
}

// NewClientJoinMessage announces user to peers.
func NewClientJoinMessage(u User) Message {
	return Message{Type: MsgClientJoin, Payload: u}
}

// NewClientLeaveMessage announces the departure of the last session of a user.
func NewClientLeaveMessage(userID int64) Message {
	return Message{Type: MsgClientLeave, Payload: LeavePayload{ID: userID}}
}

// NewLoadedMessage marks the end of state replay.
func NewLoadedMessage() Message {
	return Message{Type: MsgDocumentLoaded}
}

// NewErrorMessage reports msg to the client.
func NewErrorMessage(msg string) Message {
	return Message{Type: MsgError, Payload: ErrorPayload{Msg: msg}}
}

// WelcomePayload echoes the authenticated user.
type WelcomePayload struct {
	User User `json:"user"`
}

// NewConnectMessage is the first message on every accepted connection.
func NewConnectMessage() Message {
	return Message{Type: MsgConnect}
}

// NewWelcomeMessage confirms a login.
func NewWelcomeMessage(u User) Message {
	return Message{Type: MsgWelcome, Payload: WelcomePayload{User: u}}
}

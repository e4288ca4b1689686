package domain

import "context"

// User is an authenticated identity as resolved by the platform.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Conn delivers outbound messages to one realtime connection.
type Conn interface {
	Send(ctx context.Context, msg Message) error
}

// Session ties one realtime connection to a user and to at most one open
// document.
type Session struct {
	// ID is unique per connection.
	ID string

	// User is the identity behind the connection. Several sessions may share it.
	User User

	// Conn is the outbound side of the connection.
	Conn Conn

	// Document is the document this session joined, nil before join.
	Document *Document
}

// Send delivers msg on the session's connection.
func (s *Session) Send(ctx context.Context, msg Message) error {
	return s.Conn.Send(ctx, msg)
}

package models

import "sync"

// Conn is the transport side of a connection. *websocket.Conn satisfies it;
// tests substitute a recording fake.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Connection is a struct that represents one active real-time connection.
type Connection struct {
	// ID is the server-assigned unique identifier of the connection.
	ID string

	// UserID is the identity the client announced after connecting. Empty
	// until the first identifying event arrives.
	UserID string

	// Conn is the underlying transport connection.
	Conn Conn

	// mtx serializes writes; the transport allows only one writer at a time.
	mtx sync.Mutex
}

// Send writes v to the connection as a single JSON message.
func (c *Connection) Send(v interface{}) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.Conn.WriteJSON(v)
}

// Close closes the underlying transport connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

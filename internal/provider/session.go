package provider

import (
	"context"
	"fmt"
)

// SessionConn is the established connection a session-based messaging
// provider exposes (owned and kept alive by the channel-management
// subsystem).
type SessionConn interface {
	Connected() bool
	SendText(ctx context.Context, to, body string) (string, error)
	SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error)
}

// SessionAdapter dispatches through a live provider session
// ("session" family).
type SessionAdapter struct {
	Conn SessionConn
}

func NewSessionAdapter(conn SessionConn) *SessionAdapter {
	return &SessionAdapter{Conn: conn}
}

func (a *SessionAdapter) Family() string { return "session" }

func (a *SessionAdapter) Send(ctx context.Context, to string, msg Message) (string, error) {
	if !a.Conn.Connected() {
		return "", fmt.Errorf("session not connected")
	}
	if msg.MediaURL != "" {
		return a.Conn.SendMedia(ctx, to, msg.MediaURL, msg.Body)
	}
	return a.Conn.SendText(ctx, to, msg.Body)
}

var _ Adapter = (*SessionAdapter)(nil)

package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	family string
	sent   []string
}

func (f *fakeAdapter) Family() string { return f.family }

func (f *fakeAdapter) Send(ctx context.Context, to string, msg Message) (string, error) {
	f.sent = append(f.sent, to)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func TestRegistryResolvesByCompanyAndFamily(t *testing.T) {
	r := NewRegistry()
	sess := &fakeAdapter{family: "session"}
	api := &fakeAdapter{family: "api"}

	r.Register(1, sess)
	r.Register(1, api)
	r.Register(2, &fakeAdapter{family: "session"})

	assert.Same(t, Adapter(sess), r.Resolve(1, "session"))
	assert.Same(t, Adapter(api), r.Resolve(1, "api"))
	assert.Nil(t, r.Resolve(2, "api"))
	assert.Nil(t, r.Resolve(3, "session"))
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Register(1, &fakeAdapter{family: "session"})
	r.Remove(1, "session")
	assert.Nil(t, r.Resolve(1, "session"))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(Permanent("blocked recipient %s", "+100")))
	assert.True(t, IsPermanent(fmt.Errorf("send: %w", Permanent("invalid"))))
	assert.False(t, IsPermanent(errors.New("connection reset")))
	assert.False(t, IsPermanent(nil))
}

type fakeConn struct {
	connected bool
	texts     []string
	media     []string
}

func (c *fakeConn) Connected() bool { return c.connected }

func (c *fakeConn) SendText(ctx context.Context, to, body string) (string, error) {
	c.texts = append(c.texts, body)
	return "t1", nil
}

func (c *fakeConn) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	c.media = append(c.media, mediaURL)
	return "m1", nil
}

func TestSessionAdapterRoutesMedia(t *testing.T) {
	conn := &fakeConn{connected: true}
	a := NewSessionAdapter(conn)

	_, err := a.Send(context.Background(), "+1", Message{Body: "hello"})
	require.NoError(t, err)
	_, err = a.Send(context.Background(), "+1", Message{Body: "caption", MediaURL: "http://f/img.png"})
	require.NoError(t, err)

	assert.Equal(t, []string{"hello"}, conn.texts)
	assert.Equal(t, []string{"http://f/img.png"}, conn.media)
}

func TestSessionAdapterDisconnected(t *testing.T) {
	a := NewSessionAdapter(&fakeConn{connected: false})
	_, err := a.Send(context.Background(), "+1", Message{Body: "hello"})
	assert.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestRateLimitedDelegates(t *testing.T) {
	inner := &fakeAdapter{family: "api"}
	a := RateLimit(inner, 6000) // effectively unlimited for the test

	id, err := a.Send(context.Background(), "+1", Message{Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "api", a.Family())
}

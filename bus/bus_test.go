package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4, "+")
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("pit", "cmd", "setpoint"))
	conn.Publish(conn.NewMessage(T("pit", "cmd", "setpoint"), 225, false))

	select {
	case got := <-sub.Channel():
		require.Equal(t, 225, got.Payload)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2, "+")
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("pit", "snapshot"), "s1", true))

	sub := conn.Subscribe(T("pit", "snapshot"))
	select {
	case got := <-sub.Channel():
		require.Equal(t, "s1", got.Payload)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for retained message")
	}
}

func TestWildcardSingleLevel(t *testing.T) {
	b := NewBus(8, "+")
	c := b.NewConnection("test")

	matching := c.Subscribe(T("pit", "+", "value"))
	other := c.Subscribe(T("pit", "meat1", "status"))

	c.Publish(b.NewMessage(T("pit", "meat2", "value"), 205, false))

	select {
	case got := <-matching.Channel():
		require.Equal(t, 205, got.Payload)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wildcard subscriber did not receive message")
	}
	select {
	case <-other.Channel():
		t.Fatal("non-matching subscriber received a message")
	default:
	}
}

func TestRequestWait(t *testing.T) {
	b := NewBus(4, "+")
	server := b.NewConnection("server")
	client := b.NewConnection("client")

	reqSub := server.Subscribe(T("pit", "session", "export"))
	go func() {
		m := <-reqSub.Channel()
		server.Reply(m, "csv-data", false)
	}()

	reply, err := client.RequestWait(context.Background(), client.NewMessage(T("pit", "session", "export"), nil, false))
	require.NoError(t, err)
	require.Equal(t, "csv-data", reply.Payload)
}

func TestRequestWaitTimeout(t *testing.T) {
	b := NewBus(4, "+")
	client := b.NewConnection("client")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.RequestWait(ctx, client.NewMessage(T("nobody", "listening"), nil, false))
	require.Error(t, err)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4, "+")
	c := b.NewConnection("test")

	sub := c.Subscribe(T("pit", "cmd", "ack"))
	sub.Unsubscribe()

	c.Publish(b.NewMessage(T("pit", "cmd", "ack"), nil, false))

	_, ok := <-sub.Channel()
	require.False(t, ok, "channel should be closed after unsubscribe")
}

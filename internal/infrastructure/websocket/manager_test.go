package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAndLeaveRoom(t *testing.T) {
	m := NewManager()

	m.JoinRoom("chat-1", "alice")
	m.JoinRoom("chat-1", "bob")
	assert.True(t, m.rooms["chat-1"]["alice"])
	assert.True(t, m.rooms["chat-1"]["bob"])

	m.LeaveRoom("chat-1", "alice")
	assert.False(t, m.rooms["chat-1"]["alice"])
	assert.True(t, m.rooms["chat-1"]["bob"])

	// The room itself is dropped once the last member leaves.
	m.LeaveRoom("chat-1", "bob")
	_, ok := m.rooms["chat-1"]
	assert.False(t, ok)
}

func TestSendToUserDeliversToConnectedClient(t *testing.T) {
	m := NewManager()
	client := &Client{UserID: "alice", Send: make(chan []byte, 4)}
	m.clients["alice"] = client

	m.SendToUser("alice", []byte("hello"))

	select {
	case msg := <-client.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("expected a queued message")
	}
}

func TestSendToUserDropsWhenBufferFull(t *testing.T) {
	m := NewManager()
	client := &Client{UserID: "alice", Send: make(chan []byte, 1)}
	client.Send <- []byte("backlog")
	m.clients["alice"] = client

	done := make(chan struct{})
	go func() {
		m.SendToUser("alice", []byte("dropped"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendToUser blocked on a full client buffer")
	}

	require.Len(t, client.Send, 1)
	assert.Equal(t, "backlog", string(<-client.Send))
}

func TestSendToUserIgnoresUnknownUser(t *testing.T) {
	m := NewManager()
	m.SendToUser("ghost", []byte("hello"))
}

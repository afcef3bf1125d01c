package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sujalbistaa/whisphaven/internal/events"
)

func TestHubBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	err = hub.Publish(context.Background(), events.Event{Type: events.NewPost, Data: map[string]string{"id": "post_1"}})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, events.NewPost, got.Type)
	assert.Equal(t, "post_1", got.Data["id"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
	hub.Stop()
}

func TestPublishAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	go hub.Run()
	hub.Stop()
	hub.Stop()

	// Fill the buffer so the select can only pick done.
	for range cap(hub.Broadcast) {
		hub.Broadcast <- nil
	}
	err := hub.Publish(context.Background(), events.Event{Type: events.Like})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublishHonoursContext(t *testing.T) {
	hub := NewHub(nil)
	for range cap(hub.Broadcast) {
		hub.Broadcast <- nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Publish(ctx, events.Event{Type: events.Like}), context.Canceled)
}

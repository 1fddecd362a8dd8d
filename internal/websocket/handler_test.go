package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"breeze-chat/internal/router"
	"breeze-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestHandler(t *testing.T) (*Handler, *router.Router) {
	t.Helper()
	r := router.New()
	d := router.NewDispatcher(r, logger.NewNop())
	h := NewHandler(nil, NewHub(), d, nil, nil, logger.NewNop())
	return h, r
}

func receive(t *testing.T, client *Client) ResponseFrame {
	t.Helper()
	select {
	case raw := <-client.Send:
		var resp ResponseFrame
		require.NoError(t, json.Unmarshal(raw, &resp))
		return resp
	default:
		t.Fatal("no response frame queued")
		return ResponseFrame{}
	}
}

func TestDispatchWritesResponseFrame(t *testing.T) {
	h, r := newTestHandler(t)
	require.NoError(t, r.Handle(router.MethodGet, "/user/:id", func(c *router.Context) error {
		return c.Res(200, map[string]string{"id": c.Param("id")})
	}))

	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.dispatch(context.Background(), client, Frame{
		ID:     "frame-7",
		Method: "GET",
		Path:   "/user/42",
	})

	resp := receive(t, client)
	assert.Equal(t, "frame-7", resp.ID)
	assert.Equal(t, 200, resp.Status)
}

func TestDispatchCarriesConnectionIdentity(t *testing.T) {
	h, r := newTestHandler(t)
	id := uuid.New()
	require.NoError(t, r.Handle(router.MethodGet, "/user/me", func(c *router.Context) error {
		got, ok := c.User()
		require.True(t, ok)
		return c.Res(200, got.String())
	}))

	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	client.SetUser(id.String())
	h.dispatch(context.Background(), client, Frame{Method: "GET", Path: "/user/me"})

	resp := receive(t, client)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, id.String(), resp.Data)
}

func TestDispatchUnknownRouteResponds404(t *testing.T) {
	h, _ := newTestHandler(t)

	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.dispatch(context.Background(), client, Frame{ID: "f", Method: "GET", Path: "/nowhere"})

	resp := receive(t, client)
	assert.Equal(t, "f", resp.ID)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "route not found", resp.Data)
}

func TestHubTracksClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, waitFor, tick)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, waitFor, tick)

	_, open := <-client.Send
	assert.False(t, open, "send channel must be closed on unregister")
}

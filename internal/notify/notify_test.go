package notify

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io/v2/transports"
	"github.com/zishang520/engine.io/v2/types"
	socket_server "github.com/zishang520/socket.io/v2/socket"
)

func TestEventPayload(t *testing.T) {
	p := Event{RunID: "r1", State: "PARSING"}.Payload()
	assert.Equal(t, map[string]any{"run_id": "r1", "state": "PARSING"}, p)

	p = Event{RunID: "r1", State: "FAILED", Message: "boom"}.Payload()
	assert.Equal(t, "boom", p["message"])
}

func TestNop(t *testing.T) {
	var n Nop
	n.Notify(context.Background(), Event{State: "DONE"})
	assert.NoError(t, n.Close())
}

func TestDial_RejectsRelativeURL(t *testing.T) {
	_, err := Dial(context.Background(), "queue.local/tasks", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme and a host")
}

// startServer runs an in-process socket.io server on the default namespace
// and forwards every EventName payload it receives.
func startServer(t *testing.T) (string, <-chan any) {
	t.Helper()

	events := make(chan any, 16)
	opts := socket_server.DefaultServerOptions()
	opts.SetTransports(types.NewSet(transports.WEBSOCKET))

	httpServer := types.NewWebServer(nil)
	io := socket_server.NewServer(httpServer, opts)
	require.NoError(t, io.On("connection", func(clients ...any) {
		client := clients[0].(*socket_server.Socket)
		client.On(EventName, func(args ...any) {
			if len(args) > 0 {
				events <- args[0]
			}
		})
	}))

	ts := httptest.NewServer(httpServer)
	t.Cleanup(func() {
		io.Close(nil)
		ts.Close()
	})
	return ts.URL, events
}

func TestSocketIO_NotifyReachesServer(t *testing.T) {
	url, events := startServer(t)

	n, err := Dial(context.Background(), url, 5*time.Second)
	require.NoError(t, err)
	defer n.Close()

	n.Notify(context.Background(), Event{RunID: "r1", State: "PARSING"})
	n.Notify(context.Background(), Event{RunID: "r1", State: "FAILED", Message: "boom"})

	for _, want := range []map[string]any{
		{"run_id": "r1", "state": "PARSING"},
		{"run_id": "r1", "state": "FAILED", "message": "boom"},
	} {
		select {
		case got := <-events:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("server never received %v", want)
		}
	}
}

func TestDial_ConnectError(t *testing.T) {
	url, _ := startServer(t)

	// Only the default namespace exists, so the server refuses this one.
	_, err := Dial(context.Background(), url+"#nope", 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket.io connection failed")
}

func TestDial_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, "http://127.0.0.1:1", 5*time.Second)
	require.Error(t, err)
}

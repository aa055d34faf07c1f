package ws

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/observability"
)

type recordedEvent struct {
	connectionID string
	eventName    string
	data         []byte
}

// recordingHandler captures the session callbacks the hub fires.
type recordingHandler struct {
	connected    chan string
	disconnected chan string
	events       chan recordedEvent
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		connected:    make(chan string, 8),
		disconnected: make(chan string, 8),
		events:       make(chan recordedEvent, 8),
	}
}

func (h *recordingHandler) OnConnect(connectionID string)    { h.connected <- connectionID }
func (h *recordingHandler) OnDisconnect(connectionID string) { h.disconnected <- connectionID }
func (h *recordingHandler) OnEvent(connectionID, eventName string, data []byte) {
	h.events <- recordedEvent{connectionID, eventName, data}
}

func startHub(t *testing.T) (*Hub, *recordingHandler, *observability.StatsRecorder, string) {
	stats := observability.NewStatsRecorder()
	hub := NewHub(slog.Default(), stats)
	handler := newRecordingHandler()
	hub.SetHandler(handler)

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return hub, handler, stats, wsURL
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("Timed out waiting for %s", what)
		panic("unreachable")
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHub_ConnectEventRoundtrip(t *testing.T) {
	req := require.New(t)
	hub, handler, stats, wsURL := startHub(t)

	conn := dial(t, wsURL)

	// OnConnect fires with the hub-assigned connection id
	connectionID := waitFor(t, handler.connected, "connect callback")
	req.NotEmpty(connectionID)
	req.Equal(int64(1), stats.Snapshot().ActiveConnections)

	// Inbound frames reach the handler untouched
	req.NoError(conn.WriteJSON(Frame{Event: "register", Data: json.RawMessage(`{"username":"alice"}`)}))
	evt := waitFor(t, handler.events, "event callback")
	req.Equal(connectionID, evt.connectionID)
	req.Equal("register", evt.eventName)
	req.JSONEq(`{"username":"alice"}`, string(evt.data))

	// Outbound frames reach the socket
	hub.SendTo(connectionID, "register_response", map[string]any{"success": true})
	frame := readFrame(t, conn)
	req.Equal("register_response", frame.Event)
	req.JSONEq(`{"success":true}`, string(frame.Data))
}

func TestHub_MalformedFrameKeepsConnectionAlive(t *testing.T) {
	req := require.New(t)
	_, handler, _, wsURL := startHub(t)

	conn := dial(t, wsURL)
	connectionID := waitFor(t, handler.connected, "connect callback")

	// Not an envelope at all
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame := readFrame(t, conn)
	req.Equal("error", frame.Event)

	// The connection still works afterwards
	req.NoError(conn.WriteJSON(Frame{Event: "ping_me", Data: json.RawMessage(`{}`)}))
	evt := waitFor(t, handler.events, "event after malformed frame")
	req.Equal(connectionID, evt.connectionID)
	req.Equal("ping_me", evt.eventName)
}

func TestHub_BroadcastReachesAttachedClientsOnly(t *testing.T) {
	req := require.New(t)
	hub, handler, _, wsURL := startHub(t)

	insider := dial(t, wsURL)
	insiderID := waitFor(t, handler.connected, "first connect")
	outsider := dial(t, wsURL)
	waitFor(t, handler.connected, "second connect")

	roomID := domain.RoomID("abababab")
	hub.Attach(insiderID, roomID)

	hub.BroadcastToRoom(roomID, "new_message", map[string]string{"content": "hello"})

	frame := readFrame(t, insider)
	req.Equal("new_message", frame.Event)

	// The outsider gets nothing
	req.NoError(outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	var none Frame
	req.Error(outsider.ReadJSON(&none))

	// After detach the insider is silent too
	hub.Detach(insiderID, roomID)
	hub.BroadcastToRoom(roomID, "new_message", map[string]string{"content": "again"})
	req.NoError(insider.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	req.Error(insider.ReadJSON(&none))
}

func TestHub_DisconnectFiresOnceAndDropsGauge(t *testing.T) {
	req := require.New(t)
	_, handler, stats, wsURL := startHub(t)

	conn := dial(t, wsURL)
	connectionID := waitFor(t, handler.connected, "connect callback")

	req.NoError(conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	req.Equal(connectionID, waitFor(t, handler.disconnected, "disconnect callback"))
	req.Eventually(func() bool {
		return stats.Snapshot().ActiveConnections == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SendToUnknownConnectionIsANoOp(t *testing.T) {
	hub, _, _, _ := startHub(t)
	hub.SendTo("nobody", "new_message", map[string]string{"content": "lost"})
}

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/transport/ws"
)

// BaseRelaySuite runs scenarios against a relay reachable over real
// websockets. By default it boots the full stack in-process on an
// httptest listener; set RELAY_ADDR to target a deployed instance.
type BaseRelaySuite struct {
	suite.Suite
	Config Config

	server *httptest.Server
	cancel context.CancelFunc
	// baseURL is http://host:port of whichever relay the suite targets.
	baseURL string
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.RelayAddr != "" {
		s.baseURL = "http://" + s.Config.RelayAddr
		return
	}
	s.startInProcess()
}

func (s *BaseRelaySuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// startInProcess wires the same component graph as cmd/main.go, minus
// badger archiving and the heartbeat.
func (s *BaseRelaySuite) startInProcess() {
	logger := slog.New(slog.NewTextHandler(&testLogWriter{s: s}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	identities := runtime.NewIdentityStore(rand.New(rand.NewSource(time.Now().UnixNano())))
	registry := runtime.NewRegistry(nil)
	stats := observability.NewStatsRecorder()

	hub := ws.NewHub(logger, stats)
	coordinator := runtime.NewCoordinator(logger, identities, registry, hub, nil, 64)
	hub.SetHandler(coordinator)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	fanout := workers.NewEventFanout(logger, coordinator.Events(), time.Second, stats)
	go func() { _ = fanout.Run(ctx) }()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	internal.NewSideAPI(logger, identities, registry, stats).Register(mux)

	s.server = httptest.NewServer(mux)
	s.baseURL = s.server.URL
}

// Dial opens a registered websocket session and returns its client.
// The connection is closed automatically when the test finishes.
func (s *BaseRelaySuite) Dial(name string) *relayClient {
	s.StepHeader(fmt.Sprintf("Connecting %q", name))

	wsURL := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err, "Websocket dial to %s failed", wsURL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	s.T().Cleanup(func() { _ = conn.Close() })

	return &relayClient{suite: s, conn: conn}
}

func (s *BaseRelaySuite) StepHeader(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// relayClient drives one websocket connection frame by frame.
type relayClient struct {
	suite *BaseRelaySuite
	conn  *websocket.Conn
}

func (c *relayClient) Send(eventName string, data any) {
	raw, err := json.Marshal(data)
	c.suite.Require().NoError(err)
	c.suite.Require().NoError(c.conn.WriteJSON(ws.Frame{Event: eventName, Data: raw}))
}

// Expect reads the next frame and requires it to carry eventName,
// decoding its payload into out when out is non-nil. Frames arrive in
// emission order per connection, so no skipping is done.
func (c *relayClient) Expect(eventName string, out any) {
	timeout := time.Duration(c.suite.Config.ReadTimeoutSeconds) * time.Second
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(timeout)))

	var frame ws.Frame
	c.suite.Require().NoError(c.conn.ReadJSON(&frame), "No frame received while waiting for %q", eventName)
	c.suite.Require().Equal(eventName, frame.Event, "Unexpected event (payload: %s)", string(frame.Data))
	if out != nil {
		c.suite.Require().NoError(json.Unmarshal(frame.Data, out))
	}
}

func (c *relayClient) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// testLogWriter routes relay logs through the test output so failures
// come with the server's view of events.
type testLogWriter struct {
	s *BaseRelaySuite
}

func (w *testLogWriter) Write(p []byte) (int, error) {
	w.s.T().Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

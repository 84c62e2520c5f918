package e2e

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/Qwertuhh/leanaura-alpha/ai"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/moderation"
	"github.com/Qwertuhh/leanaura-alpha/observability"
	"github.com/Qwertuhh/leanaura-alpha/runtime"
	"github.com/Qwertuhh/leanaura-alpha/transport/rest"
	"github.com/Qwertuhh/leanaura-alpha/transport/ws"
)

const readTimeout = 3 * time.Second

// BaseSuite assembles the full stack once per suite: hub, websocket endpoint
// and REST surface on one listener, backed by the scripted responder. When
// SERVER_ADDR is set the in-process stack is skipped and the suite targets
// the running deployment instead.
type BaseSuite struct {
	suite.Suite
	Config  Config
	baseURL string
	server  *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg

	if cfg.ServerAddr != "" {
		s.baseURL = "http://" + cfg.ServerAddr
		return
	}

	log := slog.Default()
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	s.Require().NoError(err)

	metrics := observability.NewMetrics()
	sessions := runtime.NewSessionRegistry()
	store := runtime.NewRoomStore(sessions, cfg.RoomCapacity)
	dir := runtime.NewConnectionDirectory()
	broadcaster := runtime.NewBroadcaster(log, store, dir, metrics, time.Second)
	responder := ai.NewScriptedResponder(0)
	streams := runtime.NewAIStreamCoordinator(log, responder, broadcaster, metrics)
	hub := runtime.NewRoomHub(log, sessions, store, dir, broadcaster, streams, &moderator, metrics)

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(log, hub, 32))
	mux.Handle("/", rest.NewServer(log, hub, hub.Stats).Router())

	s.server = httptest.NewServer(mux)
	s.baseURL = s.server.URL
}

func (s *BaseSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *BaseSuite) RestURL(path string) string {
	return s.baseURL + path
}

// DialClient opens a websocket session; the returned client is closed with
// the test.
func (s *BaseSuite) DialClient() *Client {
	url := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws"
	socket, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)

	client := &Client{suite: s, socket: socket}
	s.T().Cleanup(client.Close)
	return client
}

// Client wraps one websocket session with event helpers.
type Client struct {
	suite  *BaseSuite
	socket *websocket.Conn
}

func (c *Client) Close() {
	_ = c.socket.Close()
}

func (c *Client) Join(roomID, userID string) {
	c.send(chat.ClientEvent{Type: chat.EventJoin, RoomID: roomID, UserID: userID})
}

func (c *Client) Leave() {
	c.send(chat.ClientEvent{Type: chat.EventLeave})
}

func (c *Client) Chat(content string) {
	c.send(chat.ClientEvent{Type: chat.EventChat, Content: content})
}

func (c *Client) send(evt chat.ClientEvent) {
	c.suite.Require().NoError(c.socket.WriteJSON(evt))
}

// Next blocks for the next broadcast message.
func (c *Client) Next() chat.Message {
	c.suite.Require().NoError(c.socket.SetReadDeadline(time.Now().Add(readTimeout)))
	var msg chat.Message
	c.suite.Require().NoError(c.socket.ReadJSON(&msg))
	return msg
}

// NextOfKind drains messages until one of the wanted kind arrives. Typing
// signals and chunk pacing make exact sequences brittle across transports;
// scenario steps assert on the milestones instead.
func (c *Client) NextOfKind(kind chat.Kind) chat.Message {
	for i := 0; i < 64; i++ {
		msg := c.Next()
		if msg.Kind == kind {
			return msg
		}
	}
	c.suite.Require().Fail(fmt.Sprintf("no %s message arrived", kind))
	return chat.Message{}
}

// CollectStream reads one full AI response: typing(true), the chunks, then
// typing(false). Returns the concatenated chunk contents.
func (c *Client) CollectStream() string {
	msg := c.NextOfKind(chat.KindTyping)
	c.suite.Require().True(msg.IsTyping, "stream must open with typing(true)")

	var response strings.Builder
	for {
		msg = c.Next()
		switch msg.Kind {
		case chat.KindAIChunk:
			response.WriteString(msg.Content)
		case chat.KindTyping:
			c.suite.Require().False(msg.IsTyping, "stream must close with typing(false)")
			return response.String()
		default:
			c.suite.Require().Failf("unexpected message during stream", "kind=%s", msg.Kind)
		}
	}
}

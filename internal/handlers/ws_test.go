package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/jason-s-yu/arcade/internal/session"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	reg := room.NewRegistry(room.NewMemoryStore(), catalog.Default(), logger)
	hub := session.NewHub(reg, session.Options{Logger: logger})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", WSHandler(logger, hub, WSOptions{OutboxSize: 16}))
	mux.HandleFunc("/healthz", HealthzHandler())
	mux.HandleFunc("/rooms", ListRoomsHandler(logger, hub))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, srv.URL+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.CloseNow() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, ws, map[string]any{"type": typ, "payload": payload}))
}

func receive(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var f frame
	require.NoError(t, wsjson.Read(ctx, ws, &f))
	return f
}

func listRooms(t *testing.T, srv *httptest.Server) []models.RoomView {
	t.Helper()
	resp, err := http.Get(srv.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body roomsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Rooms
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestListRoomsRejectsPost(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWSCreateRoomRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ws := dial(t, srv)

	send(t, ws, models.EventRoomCreate, models.RoomCreatePayload{GameID: "tic-tac-toe"})
	f := receive(t, ws)
	require.Equal(t, models.EventError, f.Type)
	var e models.ErrorPayload
	require.NoError(t, json.Unmarshal(f.Payload, &e))
	assert.Equal(t, models.CodeNotAuthenticated, e.Code)

	send(t, ws, models.EventAuth, models.AuthPayload{Identity: "alice"})
	assert.Equal(t, models.EventAuthSuccess, receive(t, ws).Type)

	send(t, ws, models.EventRoomCreate, models.RoomCreatePayload{GameID: "tic-tac-toe"})
	f = receive(t, ws)
	require.Equal(t, models.EventRoomCreated, f.Type)
	var created struct {
		Room models.RoomView `json:"room"`
	}
	require.NoError(t, json.Unmarshal(f.Payload, &created))
	assert.Equal(t, "alice", created.Room.HostID)

	rooms := listRooms(t, srv)
	require.Len(t, rooms, 1)
	assert.Equal(t, created.Room.ID, rooms[0].ID)
}

func TestWSRejectsBinaryFrames(t *testing.T) {
	srv := newTestServer(t)
	ws := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ws.Write(ctx, websocket.MessageBinary, []byte{0x1}))

	f := receive(t, ws)
	require.Equal(t, models.EventError, f.Type)
	assert.Contains(t, string(f.Payload), models.CodeInvalidPayload)
}

func TestWSDisconnectLeavesRoom(t *testing.T) {
	srv := newTestServer(t)
	ws := dial(t, srv)
	send(t, ws, models.EventAuth, models.AuthPayload{Identity: "alice"})
	receive(t, ws)
	send(t, ws, models.EventRoomCreate, models.RoomCreatePayload{GameID: "pong"})
	receive(t, ws)
	require.Len(t, listRooms(t, srv), 1)

	require.NoError(t, ws.Close(websocket.StatusNormalClosure, "bye"))
	assert.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/rooms")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body roomsResponse
		return json.NewDecoder(resp.Body).Decode(&body) == nil && len(body.Rooms) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWSSupersededConnectionIsClosed(t *testing.T) {
	srv := newTestServer(t)
	first := dial(t, srv)
	send(t, first, models.EventAuth, models.AuthPayload{Identity: "alice"})
	receive(t, first)

	second := dial(t, srv)
	send(t, second, models.EventAuth, models.AuthPayload{Identity: "alice"})
	assert.Equal(t, models.EventAuthSuccess, receive(t, second).Type)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := first.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, StatusSuperseded, websocket.CloseStatus(err))
}

func TestCloseStatus(t *testing.T) {
	assert.Equal(t, websocket.StatusGoingAway, closeStatus(session.CloseShutdown))
	assert.Equal(t, StatusSuperseded, closeStatus(session.CloseSuperseded))
	assert.Equal(t, websocket.StatusNormalClosure, closeStatus(session.CloseNormal))
}

package ws_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/videochat-service/internal/relay"
	"github.com/cwrk-planet/videochat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{online: make(map[string]bool)}
}

func (f *fakeMembers) SetOnline(_ context.Context, _, username string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[username] = online
	return nil
}

func (f *fakeMembers) TouchHeartbeat(context.Context, string, string) error { return nil }

func (f *fakeMembers) isOnline(username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[username]
}

type savedMsg struct {
	roomID  string
	sender  string
	content string
}

type fakeChat struct {
	mu    sync.Mutex
	saved []savedMsg
	fail  bool
}

func (f *fakeChat) Save(_ context.Context, roomID, sender, content string) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, time.Time{}, errors.New("store unavailable")
	}
	f.saved = append(f.saved, savedMsg{roomID: roomID, sender: sender, content: content})
	return int64(len(f.saved)), time.Now(), nil
}

func (f *fakeChat) messages() []savedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedMsg(nil), f.saved...)
}

func newTestServer(t *testing.T, members *fakeMembers, chat *fakeChat) (*httptest.Server, *relay.MemoryBus) {
	t.Helper()
	bus := relay.NewMemoryBus()
	srv := ws.NewServer(bus, members, chat)

	r := chi.NewRouter()
	r.Get("/ws/rooms/{id}", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, bus
}

func dial(t *testing.T, ts *httptest.Server, roomID, user string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + roomID
	if user != "" {
		u += "?user=" + user
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) relay.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev relay.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func writeEvent(t *testing.T, conn *websocket.Conn, ev relay.Event) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ev))
}

func TestSession_JoinEchoAndPresence(t *testing.T) {
	req := require.New(t)
	members := newFakeMembers()
	ts, bus := newTestServer(t, members, &fakeChat{})

	alice := dial(t, ts, "room-1", "alice")

	// подписка происходит до user_join: отправитель видит свой же вход
	ev := readEvent(t, alice)
	req.Equal(relay.TypeUserJoin, ev.Type)
	req.Equal("alice", ev.User)

	req.Eventually(func() bool { return members.isOnline("alice") }, 2*time.Second, 10*time.Millisecond)
	req.Eventually(func() bool { return bus.Connected("room-1") == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSession_ChatBroadcastAndPersist(t *testing.T) {
	req := require.New(t)
	chat := &fakeChat{}
	ts, _ := newTestServer(t, newFakeMembers(), chat)

	alice := dial(t, ts, "room-1", "alice")
	req.Equal(relay.TypeUserJoin, readEvent(t, alice).Type)

	bob := dial(t, ts, "room-1", "bob")
	req.Equal(relay.TypeUserJoin, readEvent(t, bob).Type)
	req.Equal("bob", readEvent(t, alice).User) // alice видит вход bob

	writeEvent(t, alice, relay.Event{Type: relay.TypeChatMessage, Message: "hi"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		req.Equal(relay.TypeChatMessage, ev.Type)
		req.Equal("hi", ev.Message)
		req.Equal("alice", ev.User)
	}

	saved := chat.messages()
	req.Len(saved, 1)
	req.Equal(savedMsg{roomID: "room-1", sender: "alice", content: "hi"}, saved[0])
}

func TestSession_AnonymousChatRelayedNotPersisted(t *testing.T) {
	req := require.New(t)
	chat := &fakeChat{}
	ts, _ := newTestServer(t, newFakeMembers(), chat)

	anon := dial(t, ts, "room-1", "")
	ev := readEvent(t, anon)
	req.Equal(relay.TypeUserJoin, ev.Type)
	req.Equal("Anonymous", ev.User)

	bob := dial(t, ts, "room-1", "bob")
	req.Equal(relay.TypeUserJoin, readEvent(t, bob).Type)
	req.Equal("bob", readEvent(t, anon).User)

	writeEvent(t, anon, relay.Event{Type: relay.TypeChatMessage, Message: "hello"})

	for _, conn := range []*websocket.Conn{anon, bob} {
		ev := readEvent(t, conn)
		req.Equal(relay.TypeChatMessage, ev.Type)
		req.Equal("hello", ev.Message)
		req.Equal("Anonymous", ev.User)
	}

	req.Empty(chat.messages())
}

func TestSession_ChatBroadcastSurvivesStoreFailure(t *testing.T) {
	req := require.New(t)
	chat := &fakeChat{fail: true}
	ts, _ := newTestServer(t, newFakeMembers(), chat)

	alice := dial(t, ts, "room-1", "alice")
	req.Equal(relay.TypeUserJoin, readEvent(t, alice).Type)

	writeEvent(t, alice, relay.Event{Type: relay.TypeChatMessage, Message: "hi"})

	// живой чат важнее журнала: ошибка хранилища не гасит рассылку
	ev := readEvent(t, alice)
	req.Equal(relay.TypeChatMessage, ev.Type)
	req.Equal("hi", ev.Message)
	req.Empty(chat.messages())
}

func TestSession_SignalAndStatusPassThrough(t *testing.T) {
	req := require.New(t)
	ts, _ := newTestServer(t, newFakeMembers(), &fakeChat{})

	alice := dial(t, ts, "room-1", "alice")
	req.Equal(relay.TypeUserJoin, readEvent(t, alice).Type)

	bob := dial(t, ts, "room-1", "bob")
	req.Equal(relay.TypeUserJoin, readEvent(t, bob).Type)
	req.Equal("bob", readEvent(t, alice).User)

	const signal = `{"sdp":"offer","candidates":[{"mid":0},{"mid":1}]}`
	writeEvent(t, alice, relay.Event{Type: relay.TypeWebRTCSignal, Signal: []byte(signal)})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		req.Equal(relay.TypeWebRTCSignal, ev.Type)
		req.Equal("alice", ev.User)
		req.JSONEq(signal, string(ev.Signal))
	}

	const status = `{"muted":true,"video":false}`
	writeEvent(t, bob, relay.Event{Type: relay.TypeUserStatus, Status: []byte(status)})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		req.Equal(relay.TypeUserStatus, ev.Type)
		req.Equal("bob", ev.User)
		req.JSONEq(status, string(ev.Status))
	}
}

func TestSession_MalformedAndUnknownFramesIgnored(t *testing.T) {
	req := require.New(t)
	ts, _ := newTestServer(t, newFakeMembers(), &fakeChat{})

	alice := dial(t, ts, "room-1", "alice")
	req.Equal(relay.TypeUserJoin, readEvent(t, alice).Type)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json at all")))
	writeEvent(t, alice, relay.Event{Type: "bogus"})
	writeEvent(t, alice, relay.Event{Type: relay.TypeChatMessage}) // нет message
	writeEvent(t, alice, relay.Event{Type: relay.TypeChatMessage, Message: "after"})

	// соединение живо, дошло только валидное событие
	ev := readEvent(t, alice)
	req.Equal(relay.TypeChatMessage, ev.Type)
	req.Equal("after", ev.Message)
}

func TestSession_CloseLeavesExactlyOnce(t *testing.T) {
	req := require.New(t)
	members := newFakeMembers()
	ts, bus := newTestServer(t, members, &fakeChat{})

	alice := dial(t, ts, "room-1", "alice")
	req.Equal(relay.TypeUserJoin, readEvent(t, alice).Type)

	bob := dial(t, ts, "room-1", "bob")
	req.Equal(relay.TypeUserJoin, readEvent(t, bob).Type)
	req.Equal("bob", readEvent(t, alice).User)

	require.NoError(t, alice.Close())

	ev := readEvent(t, bob)
	req.Equal(relay.TypeUserLeave, ev.Type)
	req.Equal("alice", ev.User)

	// к моменту user_leave сессия уже отписана
	req.Equal(1, bus.Connected("room-1"))
	req.Eventually(func() bool { return !members.isOnline("alice") }, 2*time.Second, 10*time.Millisecond)

	// второго user_leave нет: следующее событие — собственный статус bob
	writeEvent(t, bob, relay.Event{Type: relay.TypeUserStatus, Status: []byte(`{"muted":false}`)})
	ev = readEvent(t, bob)
	req.Equal(relay.TypeUserStatus, ev.Type)
	req.Equal("bob", ev.User)
}

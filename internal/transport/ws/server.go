package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/videochat-service/internal/relay"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type MemberSvc interface {
	SetOnline(ctx context.Context, roomID, username string, online bool) error
	TouchHeartbeat(ctx context.Context, roomID, username string) error
}

type ChatSvc interface {
	Save(ctx context.Context, roomID, sender, content string) (msgID int64, createdAt time.Time, err error)
}

type Server struct {
	upgrader  websocket.Upgrader
	bus       relay.Bus
	memberSvc MemberSvc
	chatSvc   ChatSvc

	pingEvery time.Duration
	sendQueue int
}

func NewServer(bus relay.Bus, member MemberSvc, chat ChatSvc) *Server {
	return &Server{
		bus:       bus,
		memberSvc: member,
		chatSvc:   chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
		sendQueue: 32,
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

func (s *Server) SetSendQueue(n int) {
	if n > 0 {
		s.sendQueue = n
	}
}

// WS endpoint: GET /ws/rooms/{id}?user=...
// Без user сессия анонимная: чат ретранслируется, но не сохраняется.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		user = relay.AnonymousUser
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	sess := newSession(conn, roomID, user, s.sendQueue)

	// подписка строго до user_join: отправитель получает свой же echo
	s.bus.Subscribe(roomID, sess)
	if user != relay.AnonymousUser {
		if err := s.memberSvc.SetOnline(r.Context(), roomID, user, true); err != nil {
			slog.Debug("ws set online failed", "room", roomID, "user", user, "err", err)
		}
	}
	s.bus.Publish(r.Context(), roomID, relay.Event{Type: relay.TypeUserJoin, User: user})

	go s.writeLoop(sess)
	s.readLoop(r.Context(), sess)

	s.teardown(r.Context(), sess)
}

// teardown выполняется ровно один раз, сколько бы путей закрытия ни
// сработало: unsubscribe, затем user_leave остальным.
func (s *Server) teardown(ctx context.Context, sess *session) {
	sess.closeOnce.Do(func() {
		s.bus.Unsubscribe(sess.roomID, sess)
		close(sess.closed)

		if sess.user != relay.AnonymousUser {
			if err := s.memberSvc.SetOnline(ctx, sess.roomID, sess.user, false); err != nil {
				slog.Debug("ws set offline failed", "room", sess.roomID, "user", sess.user, "err", err)
			}
		}
		s.bus.Publish(ctx, sess.roomID, relay.Event{Type: relay.TypeUserLeave, User: sess.user})

		if err := sess.conn.Close(); err != nil {
			slog.Debug("ws close failed", "room", sess.roomID, "user", sess.user, "err", err)
		}
	})
}

func (s *Server) readLoop(ctx context.Context, sess *session) {
	sess.conn.SetReadLimit(1 << 20)
	_ = sess.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	sess.conn.SetPongHandler(func(string) error {
		_ = sess.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		if sess.user != relay.AnonymousUser {
			_ = s.memberSvc.TouchHeartbeat(ctx, sess.roomID, sess.user)
		}
		return nil
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev relay.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// битый кадр игнорируем, соединение живёт
			continue
		}

		switch ev.Type {
		case relay.TypeChatMessage:
			text := strings.TrimSpace(ev.Message)
			if text == "" {
				continue
			}
			if sess.user != relay.AnonymousUser {
				if _, _, err := s.chatSvc.Save(ctx, sess.roomID, sess.user, text); err != nil {
					// сообщение всё равно уходит в комнату: живой чат
					// важнее журнала, расхождение только в истории
					slog.Warn("ws chat save failed", "room", sess.roomID, "user", sess.user, "err", err)
				}
			}
			s.bus.Publish(ctx, sess.roomID, relay.Event{
				Type:    relay.TypeChatMessage,
				Message: text,
				User:    sess.user,
			})

		case relay.TypeWebRTCSignal:
			if len(ev.Signal) == 0 {
				continue
			}
			s.bus.Publish(ctx, sess.roomID, relay.Event{
				Type:   relay.TypeWebRTCSignal,
				Signal: ev.Signal,
				User:   sess.user,
			})

		case relay.TypeUserStatus:
			if len(ev.Status) == 0 {
				continue
			}
			s.bus.Publish(ctx, sess.roomID, relay.Event{
				Type:   relay.TypeUserStatus,
				Status: ev.Status,
				User:   sess.user,
			})

		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(sess *session) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := sess.conn.WriteJSON(ev); err != nil {
				_ = sess.conn.Close()
				return
			}
		case <-ticker.C:
			_ = sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-sess.closed:
			return
		}
	}
}

// session — одно живое соединение. Исходящие события идут через
// ограниченную очередь send; Deliver не блокирует publisher.
type session struct {
	conn   *websocket.Conn
	roomID string
	user   string

	send      chan relay.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, roomID, user string, queue int) *session {
	return &session{
		conn:   conn,
		roomID: roomID,
		user:   user,
		send:   make(chan relay.Event, queue),
		closed: make(chan struct{}),
	}
}

func (s *session) Deliver(ev relay.Event) bool {
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

func (s *session) User() string { return s.user }

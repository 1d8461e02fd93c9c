package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cwrk-planet/videochat-service/internal/domain"
	"github.com/cwrk-planet/videochat-service/internal/postgres"
	"github.com/cwrk-planet/videochat-service/internal/relay"
	"github.com/cwrk-planet/videochat-service/internal/service"
	httpmw "github.com/cwrk-planet/videochat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	roomSvc   *service.RoomService
	memberSvc *service.MemberService
	chatSvc   *service.ChatService
	bus       relay.Bus
}

func NewHandler(room *service.RoomService, member *service.MemberService, chat *service.ChatService, bus relay.Bus) *Handler {
	return &Handler{
		roomSvc:   room,
		memberSvc: member,
		chatSvc:   chat,
		bus:       bus,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) roomItem(room *domain.Room) RoomItem {
	return RoomItem{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		InviteCode:  room.InviteCode(),
		CreatedBy:   room.CreatedBy,
		IsActive:    room.IsActive,
		OnlineCount: h.bus.Connected(room.ID),
		CreatedAt:   room.CreatedAt,
	}
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("handler.CreateRoom.Decode:", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	owner := httpmw.UsernameFromCtx(r.Context())
	room, err := h.roomSvc.CreateRoom(r.Context(), req.Name, req.Description, owner)
	if err != nil {
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, h.roomItem(room))
}

// GET /rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.roomSvc.ListRooms(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ListRooms:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms)), NextCursor: next}
	for i := range rooms {
		resp.Items = append(resp.Items, h.roomItem(&rooms[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.roomSvc.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.roomItem(room))
}

// POST /rooms/join — вступление по коду приглашения
func (h *Handler) JoinByInviteCode(w http.ResponseWriter, r *http.Request) {
	var req JoinByCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	username := httpmw.UsernameFromCtx(r.Context())

	room, err := h.roomSvc.JoinByInviteCode(r.Context(), req.InviteCode, username)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInviteCode) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "invalid invite code"})
			return
		}
		slog.Error("handler.JoinByInviteCode:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.roomItem(room))
}

// POST /rooms/{id}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	username := httpmw.UsernameFromCtx(r.Context())

	if err := h.memberSvc.LeaveRoom(r.Context(), roomID, username); err != nil {
		slog.Error("handler.LeaveRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// GET /rooms/{id}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	items, err := h.memberSvc.ListParticipants(r.Context(), roomID)
	if err != nil {
		slog.Error("handler.ListParticipants:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ParticipantsResponse{Items: make([]ParticipantItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, ParticipantItem{
			Username: it.Username,
			IsOnline: it.IsOnline,
			JoinedAt: it.JoinedAt,
			LastSeen: it.LastSeen,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	username := httpmw.UsernameFromCtx(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	content := strings.TrimSpace(req.Content)

	msgID, createdAt, err := h.chatSvc.Save(r.Context(), roomID, username, content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			slog.Error("handler.SendMessage:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	// сохранённое сообщение уходит и в комнату, как при отправке по WS
	h.bus.Publish(r.Context(), roomID, relay.Event{
		Type:    relay.TypeChatMessage,
		Message: content,
		User:    username,
	})

	writeJSON(w, http.StatusCreated, ChatMessageItem{
		ID:        msgID,
		RoomID:    roomID,
		Sender:    username,
		Content:   content,
		CreatedAt: createdAt.Truncate(time.Millisecond),
	})
}

// GET /rooms/{id}/messages?limit=
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, err := h.chatSvc.List(r.Context(), roomID, limit)
	if err != nil {
		slog.Error("handler.ListMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := MessagesResponse{Items: make([]ChatMessageItem, 0, len(items))}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}/chat?after=&limit=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	items, next, err := h.chatSvc.History(r.Context(), roomID, after, limit)
	if err != nil {
		slog.Error("handler.GetChatHistory:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type JoinByCodeRequest struct {
	InviteCode string `json:"invite_code"`
}

type RoomItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   string    `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	OnlineCount int       `json:"online_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type RoomsListResponse struct {
	Items      []RoomItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type ParticipantItem struct {
	Username string    `json:"username"`
	IsOnline bool      `json:"is_online"`
	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type ChatMessageItem struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Items []ChatMessageItem `json:"items"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

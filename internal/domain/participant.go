package domain

import "time"

// Participant — запись «когда-либо вступал в комнату». Флаг IsOnline
// отражает живое сокет-подключение, а не факт членства.
type Participant struct {
	RoomID   string    `db:"room_id"`
	Username string    `db:"username"`
	IsOnline bool      `db:"is_online"`
	JoinedAt time.Time `db:"joined_at"`
	LastSeen time.Time `db:"last_seen"`
}

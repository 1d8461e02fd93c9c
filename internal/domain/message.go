package domain

import "time"

type ChatMessage struct {
	ID        int64     `db:"id"`
	RoomID    string    `db:"room_id"`
	Sender    string    `db:"sender"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

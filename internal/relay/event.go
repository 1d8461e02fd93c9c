package relay

import "encoding/json"

// Типы событий, которые ходят через шину и по сокету
const (
	TypeChatMessage  = "chat_message"  // чат-сообщение
	TypeWebRTCSignal = "webrtc_signal" // offer/answer/ICE, непрозрачный payload
	TypeUserStatus   = "user_status"   // mute, video off и т.п.
	TypeUserJoin     = "user_join"     // участник подключился
	TypeUserLeave    = "user_leave"    // участник отключился
)

// AnonymousUser — метка неаутентифицированной сессии, никогда не пустая строка.
const AnonymousUser = "Anonymous"

// Event is a single wire frame and a single bus event: a flat JSON
// object discriminated by Type. Signal and Status are opaque to the
// relay and forwarded byte-for-byte.
type Event struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Signal  json.RawMessage `json:"signal,omitempty"`
	Status  json.RawMessage `json:"status,omitempty"`
	User    string          `json:"user,omitempty"`
}

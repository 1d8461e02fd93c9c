package httpmw

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HeartbeatMiddleware обновляет last_seen для {roomID,username} если roomID есть в пути.
type HeartbeatToucher interface {
	TouchHeartbeat(ctx context.Context, roomID, username string) error
}

func HeartbeatMiddleware(memberSvc HeartbeatToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := UsernameFromCtx(r.Context())
			if username != "" {
				if roomID := chi.URLParam(r, "id"); roomID != "" {
					// best-effort: ошибки не прерывают запрос
					_ = memberSvc.TouchHeartbeat(r.Context(), roomID, username)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

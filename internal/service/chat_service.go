package service

import (
	"context"
	"strings"
	"time"

	"github.com/cwrk-planet/videochat-service/internal/domain"
	"github.com/cwrk-planet/videochat-service/internal/postgres"
)

// maxMessageLen — лимит длины сообщения
const maxMessageLen = 4000

type ChatService struct {
	chatRepo *postgres.ChatRepository
}

func NewChatService(chatRepo *postgres.ChatRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// Save пишет сообщение в журнал комнаты. Комнаты нет — ErrRoomNotFound.
func (s *ChatService) Save(ctx context.Context, roomID, sender, content string) (int64, time.Time, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, time.Time{}, domain.ErrEmptyMessage
	}
	if len(content) > maxMessageLen {
		return 0, time.Time{}, domain.ErrMessageTooLong
	}
	msg, err := s.chatRepo.Save(ctx, roomID, sender, content)
	if err != nil {
		return 0, time.Time{}, err
	}
	return msg.ID, msg.CreatedAt, nil
}

// List — сообщения комнаты по возрастанию времени.
func (s *ChatService) List(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	return s.chatRepo.List(ctx, roomID, limit)
}

func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return s.chatRepo.History(ctx, roomID, after, limit)
}

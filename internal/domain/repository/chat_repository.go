package repository

import (
	"context"

	"ragestate/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	GetDMByMembers(ctx context.Context, memberA, memberB string) (*entity.Chat, error)
	Update(ctx context.Context, chat *entity.Chat) error

	// Message methods. CreateMessage uses the caller-supplied message id as
	// the document id, so a retried send lands on the same document.
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, chatID string, limit int, cursor string) ([]*entity.Message, string, bool, error)
}

package repository

import (
	"context"

	"ragestate/internal/domain/entity"
)

// MemberSummary pairs a summary document with the member it belongs to
// (summaries live under users/{uid}/chatSummaries/{chatId}).
type MemberSummary struct {
	UserID  string
	Summary *entity.ChatSummary
}

type SummaryRepository interface {
	Get(ctx context.Context, userID, chatID string) (*entity.ChatSummary, error)
	List(ctx context.Context, userID string, limit int, cursor string) ([]*entity.ChatSummary, string, bool, error)

	// SetAll writes every summary in one atomic batch.
	SetAll(ctx context.Context, summaries []MemberSummary) error

	// ApplyMessage folds a new message into one member's summary: updates
	// the lastMessage snapshot and, when incrementUnread is set, bumps
	// unreadCount. Returns NOT_FOUND if the member has no summary document.
	ApplyMessage(ctx context.Context, userID, chatID string, snapshot entity.LastMessageSnapshot, incrementUnread bool) error

	ResetUnread(ctx context.Context, userID, chatID string) error
	SetMuted(ctx context.Context, userID, chatID string, muted bool) error
}

package repository

import (
	"context"

	"ragestate/internal/domain/entity"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListPublic(ctx context.Context, limit int, cursor string) ([]*entity.Post, string, bool, error)
	Delete(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *entity.Comment) error
	ListComments(ctx context.Context, postID string, limit int, cursor string) ([]*entity.Comment, string, bool, error)

	// Likes are stored one document per user so repeated likes are no-ops.
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error

	// Denormalized counter maintenance.
	IncrementCounter(ctx context.Context, postID, field string, delta int64) error
	CountLikes(ctx context.Context, postID string) (int64, error)
	CountComments(ctx context.Context, postID string) (int64, error)
	SetCounters(ctx context.Context, postID string, likeCount, commentCount int64) error
	ListRecentIDs(ctx context.Context, limit int) ([]string, error)
}

package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/internal/domain/service"
	"ragestate/internal/infrastructure/ratelimit"
	ws "ragestate/internal/infrastructure/websocket"
	"ragestate/pkg/errors"
)

type FeedUseCase struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	moderation  service.ModerationService
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewFeedUseCase(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	moderation service.ModerationService,
	wsManager *ws.Manager,
) *FeedUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &FeedUseCase{
		postRepo:    postRepo,
		userRepo:    userRepo,
		moderation:  moderation,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type CreatePostInput struct {
	Content   string
	MediaURLs []string
	IsPublic  bool
}

type PostResponse struct {
	*entity.Post
	Author *entity.User `json:"author,omitempty"`
}

func (uc *FeedUseCase) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*PostResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_post")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before posting again", waitTime)
	}

	if strings.TrimSpace(input.Content) == "" && len(input.MediaURLs) == 0 {
		return nil, errors.BadRequest("Post must have content or media", nil)
	}

	author, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("Author", err)
	}

	post := &entity.Post{
		UserID:    userID,
		Content:   input.Content,
		MediaURLs: input.MediaURLs,
		IsPublic:  input.IsPublic,
	}

	if flagged, reasons := uc.moderation.Check(input.Content); flagged {
		post.Flagged = true
		post.FlagReasons = reasons
		log.Printf("CreatePost: post by %s flagged: %v", userID, reasons)
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Connected clients buffer this into their "new posts" banner rather
	// than splicing it into the visible feed.
	if post.IsPublic {
		notification := map[string]interface{}{
			"type": "new_post",
			"post": post,
		}
		notificationJSON, _ := json.Marshal(notification)
		uc.wsManager.Broadcast(notificationJSON)
	}

	return &PostResponse{Post: post, Author: author}, nil
}

func (uc *FeedUseCase) ListFeed(ctx context.Context, limit int, cursor string) ([]*entity.Post, string, bool, error) {
	return uc.postRepo.ListPublic(ctx, limit, cursor)
}

func (uc *FeedUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	return uc.postRepo.GetByID(ctx, postID)
}

func (uc *FeedUseCase) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return errors.Forbidden("Only the author can delete a post", nil)
	}
	return uc.postRepo.Delete(ctx, postID)
}

// LikePost records the like and bumps the denormalized counter. The counter
// update is best-effort; the like document is the source of truth and the
// reconciliation job closes any gap.
func (uc *FeedUseCase) LikePost(ctx context.Context, userID, postID string) error {
	if _, err := uc.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}

	if err := uc.postRepo.AddLike(ctx, postID, userID); err != nil {
		return err
	}

	if err := uc.postRepo.IncrementCounter(ctx, postID, "likeCount", 1); err != nil {
		log.Printf("LikePost: counter increment failed for post %s: %v", postID, err)
	}

	return nil
}

func (uc *FeedUseCase) UnlikePost(ctx context.Context, userID, postID string) error {
	if err := uc.postRepo.RemoveLike(ctx, postID, userID); err != nil {
		return err
	}

	if err := uc.postRepo.IncrementCounter(ctx, postID, "likeCount", -1); err != nil {
		log.Printf("UnlikePost: counter decrement failed for post %s: %v", postID, err)
	}

	return nil
}

type AddCommentInput struct {
	PostID    string
	CommentID string // client-generated; the dedup key for retried sends
	Content   string
}

func (uc *FeedUseCase) AddComment(ctx context.Context, userID string, input AddCommentInput) (*entity.Comment, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "comment")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before commenting again", waitTime)
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.BadRequest("Comment cannot be empty", nil)
	}

	if _, err := uc.postRepo.GetByID(ctx, input.PostID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ID:      input.CommentID,
		PostID:  input.PostID,
		UserID:  userID,
		Content: input.Content,
	}

	if err := uc.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if err := uc.postRepo.IncrementCounter(ctx, input.PostID, "commentCount", 1); err != nil {
		log.Printf("AddComment: counter increment failed for post %s: %v", input.PostID, err)
	}

	return comment, nil
}

func (uc *FeedUseCase) ListComments(ctx context.Context, postID string, limit int, cursor string) ([]*entity.Comment, string, bool, error) {
	return uc.postRepo.ListComments(ctx, postID, limit, cursor)
}

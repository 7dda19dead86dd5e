package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/service"
	ws "ragestate/internal/infrastructure/websocket"
	"ragestate/pkg/errors"
)

func newFeedFixture() (*FeedUseCase, *fakePostRepo) {
	userRepo := newFakeUserRepo(
		&entity.User{ID: "alice", Username: "alice"},
		&entity.User{ID: "bob", Username: "bob"},
	)
	postRepo := newFakePostRepo()
	moderation := service.NewKeywordModerationService(nil)
	wsManager := ws.NewManager()
	wsManager.Start(context.Background())

	return NewFeedUseCase(postRepo, userRepo, moderation, wsManager), postRepo
}

func TestCreatePostRequiresContent(t *testing.T) {
	uc, _ := newFeedFixture()

	_, err := uc.CreatePost(context.Background(), "alice", CreatePostInput{Content: "  "})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreatePostFlagsButPublishes(t *testing.T) {
	uc, postRepo := newFeedFixture()

	resp, err := uc.CreatePost(context.Background(), "alice", CreatePostInput{
		Content:  "wire transfer me and win",
		IsPublic: true,
	})

	require.NoError(t, err)
	assert.True(t, resp.Post.Flagged)
	assert.Contains(t, resp.Post.FlagReasons, "keyword:wire transfer")
	assert.Len(t, postRepo.posts, 1)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	uc, postRepo := newFeedFixture()
	ctx := context.Background()

	resp, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "mine", IsPublic: true})
	require.NoError(t, err)

	err = uc.DeletePost(ctx, "bob", resp.Post.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Len(t, postRepo.posts, 1)

	require.NoError(t, uc.DeletePost(ctx, "alice", resp.Post.ID))
	assert.Empty(t, postRepo.posts)
}

func TestLikePostSurvivesCounterFailure(t *testing.T) {
	uc, postRepo := newFeedFixture()
	ctx := context.Background()

	resp, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "like me", IsPublic: true})
	require.NoError(t, err)

	postRepo.incrementErr = fmt.Errorf("unavailable")

	// The like document lands even when the counter bump fails; the
	// reconcile job closes the gap later.
	require.NoError(t, uc.LikePost(ctx, "bob", resp.Post.ID))

	likes, _ := postRepo.CountLikes(ctx, resp.Post.ID)
	assert.Equal(t, int64(1), likes)
	assert.Equal(t, int64(0), resp.Post.LikeCount)
}

func TestRepeatedLikeIsNoOp(t *testing.T) {
	uc, postRepo := newFeedFixture()
	ctx := context.Background()

	resp, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "double tap", IsPublic: true})
	require.NoError(t, err)

	require.NoError(t, uc.LikePost(ctx, "bob", resp.Post.ID))
	require.NoError(t, uc.LikePost(ctx, "bob", resp.Post.ID))

	likes, _ := postRepo.CountLikes(ctx, resp.Post.ID)
	assert.Equal(t, int64(1), likes)
}

func TestAddCommentDeduplicatesByClientID(t *testing.T) {
	uc, postRepo := newFeedFixture()
	ctx := context.Background()

	resp, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "discuss", IsPublic: true})
	require.NoError(t, err)

	input := AddCommentInput{PostID: resp.Post.ID, CommentID: "client-c1", Content: "first!"}

	_, err = uc.AddComment(ctx, "bob", input)
	require.NoError(t, err)
	_, err = uc.AddComment(ctx, "bob", input)
	require.NoError(t, err)

	assert.Len(t, postRepo.comments[resp.Post.ID], 1)
}

package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragestate/internal/domain/entity"
)

func newProjectorFixture(maxAttempts int) (*SummaryProjector, *fakeSummaryRepo, *fakeChatRepo) {
	userRepo := newFakeUserRepo(
		&entity.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&entity.User{ID: "bob", Username: "bob"},
	)
	chatRepo := newFakeChatRepo()
	summaryRepo := newFakeSummaryRepo()
	projector := NewSummaryProjector(summaryRepo, userRepo, chatRepo, maxAttempts)
	return projector, summaryRepo, chatRepo
}

func seedDM(t *testing.T, projector *SummaryProjector, chatRepo *fakeChatRepo) *entity.Chat {
	t.Helper()
	chat := &entity.Chat{
		ID:      "chat-1",
		Members: []string{"alice", "bob"},
		Type:    entity.ChatTypeDM,
	}
	require.NoError(t, chatRepo.Create(context.Background(), chat))
	require.NoError(t, projector.OnChatCreated(context.Background(), chat))
	return chat
}

func sendAndDrain(t *testing.T, projector *SummaryProjector, chat *entity.Chat, chatRepo *fakeChatRepo, senderID, text string) {
	t.Helper()
	ctx := context.Background()
	message := &entity.Message{
		ID:        fmt.Sprintf("msg-%d", time.Now().UnixNano()),
		ChatID:    chat.ID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	require.NoError(t, chatRepo.CreateMessage(ctx, message))
	require.NoError(t, projector.OnMessageCreated(ctx, message))
	projector.ProcessPending(ctx)
}

func TestOnChatCreatedSeedsBothMembers(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(3)
	chat := seedDM(t, projector, chatRepo)

	aliceSummary, err := summaryRepo.Get(context.Background(), "alice", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", aliceSummary.PeerID)
	assert.Equal(t, "bob", aliceSummary.PeerName) // falls back to username
	assert.Equal(t, 0, aliceSummary.UnreadCount)

	bobSummary, err := summaryRepo.Get(context.Background(), "bob", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", bobSummary.PeerID)
	assert.Equal(t, "Alice", bobSummary.PeerName)
}

func TestOnChatCreatedIgnoresNonDMChats(t *testing.T) {
	projector, summaryRepo, _ := newProjectorFixture(3)

	eventChat := &entity.Chat{
		ID:      "event-chat",
		Members: []string{"alice", "bob", "carol"},
		Type:    entity.ChatTypeEvent,
	}

	require.NoError(t, projector.OnChatCreated(context.Background(), eventChat))

	_, err := summaryRepo.Get(context.Background(), "alice", "event-chat")
	assert.Error(t, err)
}

func TestFanoutIncrementsRecipientUnreadOnly(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(3)
	chat := seedDM(t, projector, chatRepo)

	for i := 0; i < 3; i++ {
		sendAndDrain(t, projector, chat, chatRepo, "alice", fmt.Sprintf("hey %d", i))
	}

	// Every send from alice bumps bob's unread; alice's own stays at zero.
	assert.Equal(t, 3, summaryRepo.unread("bob", chat.ID))
	assert.Equal(t, 0, summaryRepo.unread("alice", chat.ID))

	aliceSummary, err := summaryRepo.Get(context.Background(), "alice", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "hey 2", aliceSummary.LastMessage.Text)
	assert.Equal(t, "alice", aliceSummary.LastMessage.SenderID)
}

func TestFanoutSkipsMembersWithoutSummary(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(3)
	chat := seedDM(t, projector, chatRepo)

	// Simulate a member whose summary document was never seeded.
	summaryRepo.mu.Lock()
	delete(summaryRepo.summaries["bob"], chat.ID)
	summaryRepo.mu.Unlock()

	sendAndDrain(t, projector, chat, chatRepo, "alice", "anyone there?")

	// Missing document is a skip, never a retry or dead letter.
	assert.Equal(t, 0, projector.QueueDepth())
	assert.Empty(t, projector.DeadLetters())

	aliceSummary, err := summaryRepo.Get(context.Background(), "alice", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "anyone there?", aliceSummary.LastMessage.Text)
}

func TestFanoutRetriesTransientFailures(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(3)
	chat := seedDM(t, projector, chatRepo)

	summaryRepo.mu.Lock()
	summaryRepo.applyFailures["bob"] = 1
	summaryRepo.mu.Unlock()

	ctx := context.Background()
	message := &entity.Message{ID: "m-retry", ChatID: chat.ID, SenderID: "alice", Text: "retry me", CreatedAt: time.Now()}
	require.NoError(t, projector.OnMessageCreated(ctx, message))

	projector.ProcessPending(ctx)
	// Bob failed once and is still queued; alice already applied.
	assert.Equal(t, 1, projector.QueueDepth())
	assert.Equal(t, 0, summaryRepo.unread("bob", chat.ID))

	projector.ProcessPending(ctx)
	assert.Equal(t, 0, projector.QueueDepth())
	assert.Equal(t, 1, summaryRepo.unread("bob", chat.ID))
	assert.Empty(t, projector.DeadLetters())
}

func TestFanoutDeadLettersExhaustedRecipients(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(3)
	chat := seedDM(t, projector, chatRepo)

	summaryRepo.mu.Lock()
	summaryRepo.applyFailures["bob"] = -1 // never recovers
	summaryRepo.mu.Unlock()

	ctx := context.Background()
	message := &entity.Message{ID: "m-dead", ChatID: chat.ID, SenderID: "alice", Text: "doomed", CreatedAt: time.Now()}
	require.NoError(t, projector.OnMessageCreated(ctx, message))

	for i := 0; i < 3; i++ {
		projector.ProcessPending(ctx)
	}

	assert.Equal(t, 0, projector.QueueDepth())

	letters := projector.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, "bob", letters[0].UserID)
	assert.Equal(t, "m-dead", letters[0].MessageID)
	assert.Equal(t, 3, letters[0].Attempts)

	// One member running out of retries never blocks the other.
	aliceSummary, err := summaryRepo.Get(ctx, "alice", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", aliceSummary.LastMessage.Text)
}

func TestDeadLetterListStaysBounded(t *testing.T) {
	projector, summaryRepo, chatRepo := newProjectorFixture(1)
	chat := seedDM(t, projector, chatRepo)

	summaryRepo.mu.Lock()
	summaryRepo.applyFailures["bob"] = -1 // never recovers
	summaryRepo.mu.Unlock()

	ctx := context.Background()
	total := deadLetterCap + 10
	for i := 0; i < total; i++ {
		message := &entity.Message{
			ID: fmt.Sprintf("m-%d", i), ChatID: chat.ID, SenderID: "alice", CreatedAt: time.Now(),
			Text: "doomed",
		}
		require.NoError(t, projector.OnMessageCreated(ctx, message))
		projector.ProcessPending(ctx)
	}

	letters := projector.DeadLetters()
	require.Len(t, letters, deadLetterCap)

	// Oldest entries roll off; the newest is always retained.
	assert.Equal(t, fmt.Sprintf("m-%d", total-deadLetterCap), letters[0].MessageID)
	assert.Equal(t, fmt.Sprintf("m-%d", total-1), letters[len(letters)-1].MessageID)
}

package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/internal/domain/service"
	"ragestate/internal/infrastructure/ratelimit"
	ws "ragestate/internal/infrastructure/websocket"
	"ragestate/pkg/errors"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	summaryRepo repository.SummaryRepository
	userRepo    repository.UserRepository
	moderation  service.ModerationService
	projector   *SummaryProjector
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	summaryRepo repository.SummaryRepository,
	userRepo repository.UserRepository,
	moderation service.ModerationService,
	projector *SummaryProjector,
	wsManager *ws.Manager,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		summaryRepo: summaryRepo,
		userRepo:    userRepo,
		moderation:  moderation,
		projector:   projector,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type CreateChatInput struct {
	RecipientID    string
	InitialMessage string
}

// SendMessageInput carries a client-generated message id. The id is the
// dedup key: a retried send with the same id lands on the same document and
// is fanned out only once.
type SendMessageInput struct {
	ChatID    string
	MessageID string
	Text      string
	MediaURL  string
	MediaType string
}

type ChatResponse struct {
	*entity.Chat
	Peer *entity.User `json:"peer,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

func (uc *ChatUseCase) CreateChat(ctx context.Context, userID string, input CreateChatInput) (*ChatResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_chat")
	if !allowed {
		log.Printf("CreateChat rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", waitTime)
	}

	if userID == input.RecipientID {
		return nil, errors.BadRequest("You cannot create a chat with yourself", nil)
	}

	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	var chat *entity.Chat

	existing, err := uc.chatRepo.GetDMByMembers(ctx, userID, input.RecipientID)
	if err == nil && existing != nil {
		chat = existing
	} else {
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		chat = &entity.Chat{
			Members:       []string{userID, input.RecipientID},
			Type:          entity.ChatTypeDM,
			LastMessageAt: time.Now(),
		}

		if err := uc.chatRepo.Create(ctx, chat); err != nil {
			return nil, err
		}

		if err := uc.projector.OnChatCreated(ctx, chat); err != nil {
			// Summaries are derived state; the chat itself is durable.
			log.Printf("CreateChat: failed to seed summaries for chat %s: %v", chat.ID, err)
		}
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, userID, SendMessageInput{
			ChatID: chat.ID,
			Text:   input.InitialMessage,
		}); err != nil {
			return nil, err
		}
	}

	return &ChatResponse{
		Chat: chat,
		Peer: recipient,
	}, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if strings.TrimSpace(input.Text) == "" && input.MediaURL == "" {
		return nil, errors.BadRequest("Message must have text or media", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}

	if !isMember(chat.Members, userID) {
		return nil, errors.Forbidden("User is not a member of this chat", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("Sender", err)
	}

	messageID := input.MessageID
	if messageID == "" {
		messageID = uuid.New().String()
	} else {
		// Retried send: if the id already exists the original write won,
		// return it without fanning out again.
		if existing, err := uc.chatRepo.GetMessageByID(ctx, input.ChatID, messageID); err == nil {
			log.Printf("SendMessage: message %s already exists in chat %s, returning existing", messageID, input.ChatID)
			return &MessageResponse{Message: existing, Sender: sender}, nil
		}
	}

	message := &entity.Message{
		ID:        messageID,
		ChatID:    input.ChatID,
		SenderID:  userID,
		Text:      input.Text,
		MediaURL:  input.MediaURL,
		MediaType: input.MediaType,
		Status:    "sent",
		CreatedAt: time.Now(),
	}

	// Moderation is advisory: a flagged message is still delivered, it just
	// carries the flags for human review.
	if flagged, reasons := uc.moderation.Check(input.Text); flagged {
		message.Flagged = true
		message.FlagReasons = reasons
		log.Printf("SendMessage: message %s flagged: %v", messageID, reasons)
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	chat.LastMessageAt = message.CreatedAt
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		log.Printf("SendMessage: failed to update chat %s last-message time: %v", chat.ID, err)
	}

	if err := uc.projector.OnMessageCreated(ctx, message); err != nil {
		// Summary divergence is recoverable; the message is already in the log.
		log.Printf("SendMessage: failed to enqueue summary fan-out for message %s: %v", messageID, err)
	}

	uc.notifyNewMessage(chat, message, sender)

	return &MessageResponse{
		Message: message,
		Sender:  sender,
	}, nil
}

func (uc *ChatUseCase) notifyNewMessage(chat *entity.Chat, message *entity.Message, sender *entity.User) {
	notification := map[string]interface{}{
		"type":    "new_message",
		"chat_id": chat.ID,
		"message": message,
		"sender":  sender,
	}
	notificationJSON, _ := json.Marshal(notification)

	uc.wsManager.SendToChatRoom(chat.ID, notificationJSON, message.SenderID)

	// Members outside the room still need their chat list refreshed.
	listUpdate := map[string]interface{}{
		"type":            "chat_list_update",
		"chat_id":         chat.ID,
		"last_message":    message.Text,
		"last_message_at": message.CreatedAt.Format(time.RFC3339),
		"sender_id":       message.SenderID,
	}
	listUpdateJSON, _ := json.Marshal(listUpdate)

	for _, memberID := range chat.Members {
		if memberID != message.SenderID {
			uc.wsManager.SendToUser(memberID, listUpdateJSON)
		}
	}
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, chatID string, limit int, cursor string) ([]*entity.Message, string, bool, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, "", false, err
	}

	if !isMember(chat.Members, userID) {
		return nil, "", false, errors.Forbidden("User is not a member of this chat", nil)
	}

	return uc.chatRepo.ListMessages(ctx, chatID, limit, cursor)
}

func (uc *ChatUseCase) GetUserChats(ctx context.Context, userID string, limit int, cursor string) ([]*entity.ChatSummary, string, bool, error) {
	return uc.summaryRepo.List(ctx, userID, limit, cursor)
}

// JoinChatRoom subscribes a connected client to room broadcasts for a chat
// after confirming membership.
func (uc *ChatUseCase) JoinChatRoom(ctx context.Context, userID, chatID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if !isMember(chat.Members, userID) {
		return errors.Forbidden("User is not a member of this chat", nil)
	}

	uc.wsManager.JoinRoom(chatID, userID)
	return nil
}

func (uc *ChatUseCase) LeaveChatRoom(userID, chatID string) {
	uc.wsManager.LeaveRoom(chatID, userID)
}

func (uc *ChatUseCase) MarkChatAsRead(ctx context.Context, userID, chatID string) error {
	return uc.summaryRepo.ResetUnread(ctx, userID, chatID)
}

func (uc *ChatUseCase) SetMuted(ctx context.Context, userID, chatID string, muted bool) error {
	return uc.summaryRepo.SetMuted(ctx, userID, chatID, muted)
}

func isMember(members []string, userID string) bool {
	for _, m := range members {
		if m == userID {
			return true
		}
	}
	return false
}

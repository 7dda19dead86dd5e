package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ragestate/internal/usecase"
	"ragestate/pkg/response"
	"ragestate/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createChatRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required"`
	InitialMessage string `json:"initial_message"`
}

type sendMessageRequest struct {
	MessageID string `json:"message_id"` // client-generated dedup key
	Text      string `json:"text"`
	MediaURL  string `json:"media_url,omitempty" validate:"omitempty,url"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

// CreateChat creates a new DM between two users
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	chat, err := h.chatUseCase.CreateChat(c.Request().Context(), userID, usecase.CreateChatInput{
		RecipientID:    req.RecipientID,
		InitialMessage: req.InitialMessage,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

// GetUserChats returns the caller's chat summaries, newest activity first
func (h *ChatHandler) GetUserChats(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPageParams(c, 20)

	summaries, nextCursor, hasMore, err := h.chatUseCase.GetUserChats(c.Request().Context(), userID, params.Limit, params.Cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, summaries, nextCursor, hasMore)
}

// SendMessage appends a message to a chat
func (h *ChatHandler) SendMessage(c echo.Context) error {
	chatID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ChatID:    chatID,
		MessageID: req.MessageID,
		Text:      req.Text,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetChatMessages pages through a chat's message history
func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	chatID := c.Param("id")
	userID := c.Get("uid").(string)
	params := utils.GetPageParams(c, 50)

	messages, nextCursor, hasMore, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, chatID, params.Limit, params.Cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, messages, nextCursor, hasMore)
}

// MarkChatAsRead resets the caller's unread count for a chat
func (h *ChatHandler) MarkChatAsRead(c echo.Context) error {
	chatID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkChatAsRead(c.Request().Context(), userID, chatID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// MuteChat toggles summary notifications for a chat
func (h *ChatHandler) MuteChat(c echo.Context) error {
	chatID := c.Param("id")
	userID := c.Get("uid").(string)

	var req muteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.chatUseCase.SetMuted(c.Request().Context(), userID, chatID, req.Muted); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

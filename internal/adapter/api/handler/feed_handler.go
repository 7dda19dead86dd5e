package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ragestate/internal/usecase"
	"ragestate/pkg/response"
	"ragestate/pkg/utils"
)

type FeedHandler struct {
	feedUseCase *usecase.FeedUseCase
}

func NewFeedHandler(feedUseCase *usecase.FeedUseCase) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
	}
}

type createPostRequest struct {
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls,omitempty" validate:"omitempty,dive,url"`
	IsPublic  *bool    `json:"is_public"`
}

type addCommentRequest struct {
	CommentID string `json:"comment_id"` // client-generated dedup key
	Content   string `json:"content" validate:"required"`
}

func (h *FeedHandler) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post, err := h.feedUseCase.CreatePost(c.Request().Context(), userID, usecase.CreatePostInput{
		Content:   req.Content,
		MediaURLs: req.MediaURLs,
		IsPublic:  isPublic,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, post)
}

func (h *FeedHandler) ListFeed(c echo.Context) error {
	params := utils.GetPageParams(c, 20)

	posts, nextCursor, hasMore, err := h.feedUseCase.ListFeed(c.Request().Context(), params.Limit, params.Cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, posts, nextCursor, hasMore)
}

func (h *FeedHandler) GetPost(c echo.Context) error {
	post, err := h.feedUseCase.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, post)
}

func (h *FeedHandler) DeletePost(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.feedUseCase.DeletePost(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *FeedHandler) LikePost(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.feedUseCase.LikePost(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *FeedHandler) UnlikePost(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.feedUseCase.UnlikePost(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *FeedHandler) AddComment(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	comment, err := h.feedUseCase.AddComment(c.Request().Context(), userID, usecase.AddCommentInput{
		PostID:    c.Param("id"),
		CommentID: req.CommentID,
		Content:   req.Content,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, comment)
}

func (h *FeedHandler) ListComments(c echo.Context) error {
	params := utils.GetPageParams(c, 20)

	comments, nextCursor, hasMore, err := h.feedUseCase.ListComments(c.Request().Context(), c.Param("id"), params.Limit, params.Cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, comments, nextCursor, hasMore)
}

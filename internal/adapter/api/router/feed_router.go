package router

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/adapter/api/handler"
	"ragestate/internal/adapter/api/middleware"
)

func SetupFeedRouter(e *echo.Echo, feedHandler *handler.FeedHandler, authMiddleware *middleware.AuthMiddleware) {
	feedGroup := e.Group("/v1/feed")
	feedGroup.GET("", feedHandler.ListFeed) // public feed needs no auth
	feedGroup.GET("/posts/:id", feedHandler.GetPost)
	feedGroup.GET("/posts/:id/comments", feedHandler.ListComments)

	authedGroup := e.Group("/v1/feed")
	authedGroup.Use(authMiddleware.Authenticate)
	authedGroup.POST("/posts", feedHandler.CreatePost)
	authedGroup.DELETE("/posts/:id", feedHandler.DeletePost)
	authedGroup.POST("/posts/:id/like", feedHandler.LikePost)
	authedGroup.DELETE("/posts/:id/like", feedHandler.UnlikePost)
	authedGroup.POST("/posts/:id/comments", feedHandler.AddComment)
}

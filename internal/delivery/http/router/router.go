// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"campus/config"
	"campus/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config         *config.Config
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	EventHandler   *handler.EventHandler
	RewardHandler  *handler.RewardHandler
	StorageHandler *handler.StorageHandler
	StreamHandler  *handler.StreamHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	allowStorageClear bool

	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	postHandler    *handler.PostHandler
	commentHandler *handler.CommentHandler
	eventHandler   *handler.EventHandler
	rewardHandler  *handler.RewardHandler
	storageHandler *handler.StorageHandler
	streamHandler  *handler.StreamHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		allowStorageClear: params.Config.HTTP.AllowStorageClear,
		authHandler:       params.AuthHandler,
		userHandler:       params.UserHandler,
		postHandler:       params.PostHandler,
		commentHandler:    params.CommentHandler,
		eventHandler:      params.EventHandler,
		rewardHandler:     params.RewardHandler,
		storageHandler:    params.StorageHandler,
		streamHandler:     params.StreamHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// Routes that act as the current user reject with NOT_LOGGED_IN from the store itself.
func (r *router) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", handler.HealthCheck)

	api := e.Group("", mw...)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	api.GET("/me", r.userHandler.GetProfile)
	api.PUT("/me", r.userHandler.UpdateProfile)

	postGroup := api.Group("/posts")
	{
		postGroup.GET("", r.postHandler.ListPosts)
		postGroup.POST("", r.postHandler.CreatePost)
		postGroup.GET("/:id", r.postHandler.GetPost)
		postGroup.PUT("/:id", r.postHandler.UpdatePost)
		postGroup.DELETE("/:id", r.postHandler.DeletePost)

		postGroup.POST("/:id/like", r.postHandler.LikePost)
		postGroup.DELETE("/:id/like", r.postHandler.UnlikePost)

		postGroup.POST("/:id/comments", r.commentHandler.CreateComment)
		postGroup.PUT("/:id/comments/:commentId", r.commentHandler.UpdateComment)
		postGroup.DELETE("/:id/comments/:commentId", r.commentHandler.DeleteComment)
	}

	eventGroup := api.Group("/events")
	{
		eventGroup.GET("", r.eventHandler.EventsOn)
		eventGroup.GET("/days", r.eventHandler.EventDays)
	}

	api.GET("/rewards", r.rewardHandler.ListRewards)

	if r.allowStorageClear {
		api.DELETE("/storage", r.storageHandler.ClearStorage)
	}

	// The stream is long lived, so it skips the per-request rate limit.
	e.GET("/ws", r.streamHandler.Stream)
}

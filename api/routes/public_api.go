package routes

import (
	"foodi/api/handlers"
	"foodi/api/middleware"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/register", handlers.Register)
		publicEndpoints.POST("auth/login", handlers.Login)

		publicEndpoints.GET("user/search", handlers.UserSearch)
		publicEndpoints.GET("user/get/:id", handlers.UserGet)

		// Посты: чтение публично
		publicEndpoints.GET("posts", handlers.ListPosts)
		publicEndpoints.GET("posts/:post_id", handlers.GetPost)
		publicEndpoints.GET("posts/:post_id/comments", handlers.ListComments)
		publicEndpoints.GET("users/:user_id/posts", handlers.ListUserPosts)
		publicEndpoints.GET("restaurants/posts", handlers.ListRestaurantPosts)

		// Лидерборд
		publicEndpoints.GET("leaderboard", handlers.GetLeaderboard)
		publicEndpoints.GET("leaderboard/users", handlers.GetTopUsers)
		publicEndpoints.GET("leaderboard/ranks", handlers.GetRanks)

		publicEndpoints.GET("foodtypes", handlers.GetFoodTypes)
	}

	// Эндпоинты с опциональной аутентификацией
	optionalAuth := router.Group("/api/v1/")
	optionalAuth.Use(middleware.OptionalAuthMiddleware())
	{
		optionalAuth.GET("posts/:post_id/likes", handlers.GetLikes)
		optionalAuth.GET("users/:user_id/follow-status", handlers.GetFollowStatus)
		optionalAuth.GET("users/:user_id/followers", handlers.GetFollowers)
		optionalAuth.GET("users/:user_id/following", handlers.GetFollowing)
	}

	return publicEndpoints
}

func AuthorizedApi(router *gin.Engine, auth gin.HandlerFunc) *gin.RouterGroup {
	authorizedEndpoints := router.Group("/api/v1/")
	authorizedEndpoints.Use(auth)
	{
		authorizedEndpoints.POST("auth/logout", handlers.Logout)

		authorizedEndpoints.GET("profile", handlers.GetProfile)
		authorizedEndpoints.PUT("profile/settings", handlers.UpdateSettings)

		authorizedEndpoints.POST("posts", handlers.CreatePost)
		authorizedEndpoints.DELETE("posts/:post_id", handlers.DeletePost)
		authorizedEndpoints.POST("posts/:post_id/like", handlers.ToggleLike)
		authorizedEndpoints.POST("posts/:post_id/comments", handlers.AddComment)
		authorizedEndpoints.POST("posts/:post_id/save", handlers.ToggleSaved)
		authorizedEndpoints.GET("posts/:post_id/saved", handlers.GetSavedStatus)
		authorizedEndpoints.GET("profile/saved", handlers.ListSavedPosts)

		authorizedEndpoints.GET("feed", handlers.GetFeed)
		authorizedEndpoints.GET("feed/ws", handlers.WSFeedHandler)

		authorizedEndpoints.POST("users/:user_id/follow", handlers.Follow)
		authorizedEndpoints.DELETE("users/:user_id/follow", handlers.Unfollow)

		authorizedEndpoints.GET("notifications", handlers.ListNotifications)
		authorizedEndpoints.POST("notifications/read", handlers.MarkNotificationsRead)
		authorizedEndpoints.GET("notifications/unread", handlers.GetUnreadCount)

		// Админские эндпоинты для управления кешем лент
		authorizedEndpoints.POST("admin/feed/invalidate/:user_id", handlers.InvalidateUserFeed)
		authorizedEndpoints.POST("admin/feed/rebuild/:user_id", handlers.RebuildUserFeed)
		authorizedEndpoints.GET("admin/queue/stats", handlers.GetQueueStats)
	}
	return authorizedEndpoints
}

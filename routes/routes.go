package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ndtoan/meeting-server/controllers"
	"github.com/ndtoan/meeting-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLogin)
		}

		api.GET("/me", middleware.AuthJWT(), controllers.Me)
		api.GET("/users", middleware.AuthJWT(), controllers.GetUserByEmail)

		meetings := api.Group("/meetings")
		{
			// Guest routes authenticate by capability token; they must stay
			// outside the JWT group. OptionalAuth still recognizes a
			// signed-in user following a guest link.
			guest := meetings.Group("/guest")
			guest.Use(middleware.OptionalAuth())
			{
				guest.GET("/:token", controllers.GetGuestInvite)
				guest.POST("/:token/respond", controllers.SubmitGuestResponse)
			}

			authed := meetings.Group("")
			authed.Use(middleware.AuthJWT())
			{
				authed.POST("", middleware.RateLimitMeetingsCreate(), controllers.CreateMeeting)
				authed.GET("", controllers.ListMeetings)
				authed.POST("/import", controllers.ImportMeetings)
				authed.GET("/:id", controllers.GetMeetingDetail)
				authed.GET("/:id/export", controllers.ExportMeeting)
				authed.POST("/:id/respond", controllers.RespondToMeeting)
				// Organizer-only: the guard also loads the meeting; the
				// services re-check so non-HTTP callers get typed errors.
				authed.POST("/:id/confirm", middleware.CheckMeetingOrganizer(), controllers.ConfirmSlot)
				authed.POST("/:id/remind", middleware.CheckMeetingOrganizer(), controllers.RemindNonResponders)
				authed.DELETE("/:id", middleware.CheckMeetingOrganizer(), controllers.DeleteMeeting)
			}
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthJWT())
		{
			notifications.GET("", controllers.ListNotifications)
			notifications.POST("/:id/read", controllers.MarkNotificationRead)
		}
	}
}

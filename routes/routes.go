package routes

import (
	"github.com/gin-gonic/gin"

	"forms-management-api/controllers"
	"forms-management-api/middleware"
)

func SetupRoutes(router *gin.Engine) {
	// API group
	api := router.Group("/api")
	{
		// Public routes
		public := api.Group("")
		{
			// Authentication
			public.POST("/auth/login", controllers.Login)
			public.POST("/auth/verify-otp", controllers.VerifyOTP)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Forms Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/auth/refresh", controllers.RefreshToken)
			protected.GET("/auth/me", controllers.GetProfile)
			protected.PUT("/auth/change-password", controllers.ChangePassword)

			// Form templates
			protected.GET("/forms/templates", controllers.GetFormTemplates)
			protected.POST("/forms/templates", middleware.RequireAdmin(), controllers.CreateFormTemplate)
			protected.PUT("/forms/templates/:id", middleware.RequireAdmin(), controllers.UpdateFormTemplate)
			protected.DELETE("/forms/templates/:id", middleware.RequireAdmin(), controllers.DeleteFormTemplate)

			// Forms
			forms := protected.Group("/forms")
			{
				forms.POST("", controllers.CreateForm)
				forms.GET("", controllers.GetForms)
				forms.GET("/statistics", controllers.GetFormStatistics)
				forms.GET("/:id", controllers.GetForm)
				forms.POST("/:id/final-approve", controllers.FinalApproveForm)
			}

			// Approval chain
			approval := protected.Group("/approval")
			{
				approval.GET("/forms/:id/approvals", controllers.GetFormApprovals)
				approval.POST("/forms/:id/approve", controllers.ApproveForm)
				approval.POST("/forms/:id/reject", controllers.RejectForm)
				approval.POST("/forms/:id/add-approver", controllers.AddApprover)
				approval.GET("/my-approvals", controllers.GetMyPendingApprovals)
				approval.GET("/approval-history", controllers.GetApprovalHistory)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", controllers.GetUsers)
				admin.POST("/users", controllers.CreateUser)
				admin.PUT("/users/:id", controllers.UpdateUser)
				admin.DELETE("/users/:id", controllers.DeleteUser)

				admin.GET("/roles", controllers.GetRoles)
				admin.POST("/roles", controllers.CreateRole)
				admin.PUT("/roles/:id", controllers.UpdateRole)
				admin.DELETE("/roles/:id", controllers.DeleteRole)

				admin.GET("/statistics/overview", controllers.GetSystemOverview)
				admin.GET("/form-builder/fields", controllers.GetFieldTypes)
				admin.GET("/backup/export", controllers.ExportData)
			}
		}
	}
}

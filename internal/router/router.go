package router

import (
	"time"

	"github.com/commodore-dev/commodore/internal/handlers"
	"github.com/commodore-dev/commodore/internal/middleware"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		authed := api.Group("", middleware.AuthMiddleware())
		{
			authed.PATCH("/profile", handlers.UpdateProfile)
			authed.GET("/dashboard", handlers.Dashboard)
			authed.GET("/calendar.json", middleware.RequirePermission(types.PermViewEvents), handlers.CalendarJSON)

			events := authed.Group("/events")
			{
				events.GET("", middleware.RequirePermission(types.PermViewEvents), handlers.ListEvents)
				events.GET("/:event_id", middleware.RequirePermission(types.PermViewEvents), handlers.GetEvent)
				events.POST("", middleware.RequirePermission(types.PermCreateEvents), handlers.CreateEvent)
				events.PUT("/:event_id", middleware.RequirePermission(types.PermEditEvents), handlers.UpdateEvent)
				events.DELETE("/:event_id", middleware.RequirePermission(types.PermDeleteEvents), handlers.DeleteEvent)

				events.POST("/:event_id/register", handlers.RegisterForEvent)
				events.DELETE("/:event_id/register", handlers.UnregisterFromEvent)
				events.GET("/:event_id/registrants", handlers.ListRegistrants)

				events.GET("/:event_id/fees", middleware.RequirePermission(types.PermViewEvents), handlers.ListEventFees)
				events.PUT("/:event_id/fees", middleware.RequirePermission(types.PermEditEvents), handlers.ReplaceEventFees)
			}

			authed.POST("/registrations/:registration_id/guests", handlers.AddGuest)
			authed.DELETE("/guests/:guest_id", handlers.DeleteGuest)

			categories := authed.Group("/categories")
			{
				categories.GET("", middleware.RequirePermission(types.PermViewEvents), handlers.ListCategories)
				categories.POST("", middleware.RequirePermission(types.PermManageCategories), handlers.CreateCategory)
				categories.PUT("/:category_id", middleware.RequirePermission(types.PermManageCategories), handlers.UpdateCategory)
				categories.DELETE("/:category_id", middleware.RequirePermission(types.PermManageCategories), handlers.DeleteCategory)
			}

			authed.GET("/members", handlers.MembersDirectory)
			authed.GET("/members/autocomplete", handlers.MemberAutocomplete)

			users := authed.Group("/users", middleware.RequireAnyPermission(types.PermManageUsers, types.PermAccessAdmin))
			{
				users.GET("", handlers.ListUsers)
				users.POST("", handlers.CreateClubUser)
				users.PUT("/:user_id", handlers.UpdateClubUser)
				users.DELETE("/:user_id", handlers.DeleteClubUser)
			}

			authed.GET("/action-log",
				middleware.RequireAnyPermission(types.PermEditEvents, types.PermDeleteEvents),
				handlers.ListEventActionLog)

			admin := authed.Group("/admin", middleware.RequirePermission(types.PermAccessAdmin))
			{
				admin.GET("/roles", handlers.ListRoles)
				admin.POST("/roles", handlers.CreateRole)
				admin.PUT("/roles/:role_id", handlers.UpdateRole)
				admin.DELETE("/roles/:role_id", handlers.DeleteRole)

				admin.POST("/member-types", handlers.CreateMemberType)
				admin.PUT("/member-types/:member_type_id", handlers.UpdateMemberType)
				admin.DELETE("/member-types/:member_type_id", handlers.DeleteMemberType)
				admin.POST("/member-types/reorder", handlers.ReorderMemberTypes)

				admin.GET("/member-type-relationships", handlers.ListMemberTypeRelationships)
				admin.POST("/member-type-relationships", handlers.CreateMemberTypeRelationship)
				admin.PUT("/member-type-relationships/:relationship_id", handlers.UpdateMemberTypeRelationship)
				admin.DELETE("/member-type-relationships/:relationship_id", handlers.DeleteMemberTypeRelationship)
			}

			authed.GET("/member-types", handlers.ListMemberTypes)

			folders := authed.Group("/folders")
			{
				folders.GET("", handlers.ListFolders)
				folders.POST("", handlers.CreateFolder)
				folders.GET("/:folder_id", handlers.GetFolder)
				folders.PUT("/:folder_id", handlers.UpdateFolder)
				folders.DELETE("/:folder_id", handlers.DeleteFolder)

				folders.POST("/:folder_id/files", handlers.UploadFile)

				folders.GET("/:folder_id/permissions", middleware.RequirePermission(types.PermAccessAdmin), handlers.ListFolderPermissions)
				folders.PUT("/:folder_id/permissions", middleware.RequirePermission(types.PermAccessAdmin), handlers.SetFolderPermission)
			}

			authed.DELETE("/folder-permissions/:permission_id", middleware.RequirePermission(types.PermAccessAdmin), handlers.DeleteFolderPermission)

			files := authed.Group("/files")
			{
				files.GET("/:file_id", handlers.GetFile)
				files.GET("/:file_id/download", handlers.DownloadFile)
				files.PUT("/:file_id", handlers.UpdateFile)
				files.DELETE("/:file_id", handlers.DeleteFile)
			}
		}
	}

	return r
}

package app

import (
	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/middleware"
	"suggestion_board_backend/internal/model"

	"suggestion_board_backend/pkg/monitoring"

	"suggestion_board_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"

	router.GET("/health", c.health.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		api.GET("/me", c.user.Me)

		suggestions := api.Group("/suggestions")
		{
			suggestions.GET("", c.suggestion.ListSuggestions)
			suggestions.POST("", c.suggestion.CreateSuggestion)
			suggestions.GET("/:id", c.suggestion.GetSuggestion)
			suggestions.PUT("/:id", c.suggestion.UpdateSuggestion)
			suggestions.PATCH("/:id/status", middleware.RoleMiddleware(model.RoleAdmin), c.suggestion.ChangeStatus)
			suggestions.DELETE("/:id", c.suggestion.DeleteSuggestion)

			suggestions.GET("/:id/votes", c.vote.ListVotes)
			suggestions.POST("/:id/votes", c.vote.CastVote)

			suggestions.GET("/:id/comments", c.comment.ListComments)
			suggestions.POST("/:id/comments", c.comment.AddComment)
			suggestions.DELETE("/:id/comments/:commentId", c.comment.DeleteComment)
		}

		api.GET("/votes/quota", c.vote.Quota)
		api.DELETE("/votes/:id", c.vote.WithdrawVote)

		taxonomy := api.Group("/taxonomy")
		{
			taxonomy.GET("/categories", c.taxonomy.GetCategories)
			taxonomy.GET("/subcategories", c.taxonomy.GetSubcategories)
			taxonomy.GET("/statuses", c.taxonomy.GetStatuses)

			admin := taxonomy.Group("")
			admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
			{
				admin.POST("/categories", c.taxonomy.AddCategory)
				admin.DELETE("/categories/:id", c.taxonomy.RemoveCategory)
				admin.POST("/subcategories", c.taxonomy.AddSubcategory)
				admin.DELETE("/subcategories/:id", c.taxonomy.RemoveSubcategory)
				admin.POST("/statuses", c.taxonomy.AddStatus)
				admin.DELETE("/statuses/:id", c.taxonomy.RemoveStatus)
			}
		}
	}
}

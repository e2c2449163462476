package api

import (
	"Classfeed/internal/api/middleware"
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware())
		{
			postGroup.POST("", group.PostHandler.CreatePost)
			postGroup.GET("", group.PostHandler.ListFeed)
			postGroup.GET("/:post_id", group.PostHandler.GetPost)
			postGroup.PUT("/:post_id", group.PostHandler.EditPost)
			postGroup.POST("/:post_id/resubmit", group.PostHandler.ResubmitPost)
			postGroup.DELETE("/:post_id", group.PostHandler.DeletePost)

			// 审核接口，仅限审核角色
			auditGroup := postGroup.Group("/audit")
			auditGroup.Use(middleware.CheckRoles(model.RoleAdmin, model.RoleStaff, model.RoleTutor))
			{
				auditGroup.GET("/list", group.PostHandler.ListPending)
				auditGroup.PUT("/:post_id/status", group.PostHandler.ModeratePost)
			}
		}

		actionGroup := apiGroup.Group("/post/action")
		actionGroup.Use(middleware.AuthMiddleware())
		{
			actionGroup.POST("/reactions/:post_id", group.ActionHandler.ToggleReaction)
			actionGroup.GET("/reactions/:post_id", group.ActionHandler.GetReactionCounts)

			actionGroup.POST("/comments/:post_id", group.ActionHandler.CreateComment)
			actionGroup.GET("/comments/:post_id", group.ActionHandler.ListComments)
			actionGroup.GET("/comments/:post_id/count", group.ActionHandler.GetCommentCount)
			actionGroup.PUT("/comments/:post_id/:comment_id", group.ActionHandler.UpdateComment)
			actionGroup.DELETE("/comments/:post_id/:comment_id", group.ActionHandler.DeleteComment)

			actionGroup.POST("/views/:post_id", group.ActionHandler.AddView)
			actionGroup.GET("/views/:post_id", group.ActionHandler.GetViewCount)
		}

		feedGroup := apiGroup.Group("/feed")
		{
			// WS 握手在 Query 里带 token，鉴权在 Handler 内完成
			feedGroup.GET("", group.FeedHandler.Connect)
		}
	}

	return r
}

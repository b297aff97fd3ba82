package api

import (
	"Rendezvous/internal/api/middleware"
	"Rendezvous/internal/pkg/logger"
	"Rendezvous/internal/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", metrics.Handler())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"success": true,
				"message": "pong",
				"data":    nil,
			})
		})

		// 鉴权在握手阶段由 WsHandler 自行处理
		apiGroup.GET("/im/ws", group.WsHandler.Connect)

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())

		conversationGroup := authGroup.Group("/conversations")
		{
			conversationGroup.POST("", group.ConversationHandler.Create)
			conversationGroup.GET("/mine", group.ConversationHandler.ListMine)
			conversationGroup.GET("/:id", group.ConversationHandler.Get)
			conversationGroup.PATCH("/:id/last-message", group.ConversationHandler.UpdateLastMessage)
		}

		messageGroup := authGroup.Group("/messages")
		{
			messageGroup.POST("", group.MessageHandler.Create)
			messageGroup.GET("/conversation/:conversationId", group.MessageHandler.ListByConversation)
			messageGroup.POST("/conversation/:conversationId/read", group.MessageHandler.MarkRead)
			messageGroup.GET("/:id", group.MessageHandler.Get)
			messageGroup.PATCH("/:id", group.MessageHandler.Update)
			messageGroup.PATCH("/:id/is-deleted", group.MessageHandler.UpdateDeletion)
		}

		attachmentGroup := authGroup.Group("/attachments")
		{
			attachmentGroup.POST("", group.AttachmentHandler.Upload)
			attachmentGroup.DELETE("/:attachmentId", group.AttachmentHandler.Delete)
		}

		blockGroup := authGroup.Group("/users/blocks")
		{
			blockGroup.GET("", group.BlockHandler.List)
			blockGroup.POST("/:userId", group.BlockHandler.Block)
			blockGroup.DELETE("/:userId", group.BlockHandler.Unblock)
		}
	}

	return r
}

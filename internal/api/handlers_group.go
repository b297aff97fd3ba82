package api

import "Rendezvous/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ConversationHandler *handler.ConversationHandler
	MessageHandler      *handler.MessageHandler
	AttachmentHandler   *handler.AttachmentHandler
	BlockHandler        *handler.BlockHandler
	WsHandler           *handler.WsHandler
}

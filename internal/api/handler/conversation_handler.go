package handler

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversationService service.ConversationService
}

func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// Create 创建会话，已存在时直接返回
func (s *ConversationHandler) Create(c *gin.Context) {
	var req dto.CreateConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}
	userID := currentUserID(c)
	if userID != req.SenderID && userID != req.ReceiverID {
		response.Error(c, service.UnauthorizedError)
		return
	}

	res, err := s.conversationService.CreateConversation(c.Request.Context(), req.SenderID, req.ReceiverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListMine 当前用户的会话列表
func (s *ConversationHandler) ListMine(c *gin.Context) {
	page := pageQuery(c, "updatedAt:desc")
	res, err := s.conversationService.ListConversations(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ConversationHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.conversationService.GetConversation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isParticipant(res, currentUserID(c)) {
		response.Error(c, service.UnauthorizedError)
		return
	}
	response.Success(c, res)
}

// UpdateLastMessage 手动同步会话摘要
func (s *ConversationHandler) UpdateLastMessage(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateLastMessageReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	conv, err := s.conversationService.GetConversation(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isParticipant(conv, currentUserID(c)) {
		response.Error(c, service.UnauthorizedError)
		return
	}
	if err = s.conversationService.UpdateLastMessage(ctx, id, req.LastMessageID, req.LastMessage); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.conversationService.GetConversation(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func isParticipant(conv *dto.ConversationDTO, userID uint64) bool {
	return conv.SenderID == userID || conv.ReceiverID == userID
}

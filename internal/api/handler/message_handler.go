package handler

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/service"
	log "log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const attachmentFormField = "attachments"

type MessageHandler struct {
	messageService      service.MessageService
	conversationService service.ConversationService
}

func NewMessageHandler(messageService service.MessageService, conversationService service.ConversationService) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		conversationService: conversationService,
	}
}

// Create multipart 表单：消息字段 + 可选的附件文件
func (s *MessageHandler) Create(c *gin.Context) {
	if limit := imConfig().MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var req dto.CreateMessageReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}
	userID := currentUserID(c)
	if req.SenderID == 0 {
		req.SenderID = userID
	}
	if req.SenderID != userID {
		response.Error(c, service.UnauthorizedError)
		return
	}

	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		headers = form.File[attachmentFormField]
	}
	files, closeFiles, err := openUploads(headers)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFiles()

	res, err := s.messageService.CreateMessage(c.Request.Context(), &req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListByConversation 分页获取会话消息
func (s *MessageHandler) ListByConversation(c *gin.Context) {
	convID, err := uintParam(c, "conversationId")
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	conv, err := s.conversationService.GetConversation(ctx, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isParticipant(conv, currentUserID(c)) {
		response.Error(c, service.UnauthorizedError)
		return
	}

	res, err := s.messageService.FindByConversationID(ctx, convID, pageQuery(c, "createdAt:desc"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *MessageHandler) Get(c *gin.Context) {
	res, err := s.messageService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if res == nil {
		response.Error(c, service.ErrMessageNotFound)
		return
	}
	response.Success(c, res)
}

// Update 编辑正文，只有发送者可以编辑
func (s *MessageHandler) Update(c *gin.Context) {
	var req dto.UpdateMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}
	id := c.Param("id")
	if err := s.checkSender(c, id); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.UpdateContent(c.Request.Context(), id, req.Text, req.NeedsTranslation)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateDeletion 软删除或恢复
func (s *MessageHandler) UpdateDeletion(c *gin.Context) {
	var req dto.UpdateDeletionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}
	id := c.Param("id")
	if err := s.checkSender(c, id); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.UpdateDeletionStatus(c.Request.Context(), id, *req.IsDeleted)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkRead 将会话中发给当前用户的消息标记为已读
func (s *MessageHandler) MarkRead(c *gin.Context) {
	convID, err := uintParam(c, "conversationId")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.messageService.MarkConversationRead(c.Request.Context(), convID, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *MessageHandler) checkSender(c *gin.Context, id string) error {
	msg, err := s.messageService.FindByID(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if msg == nil {
		return service.ErrMessageNotFound
	}
	if msg.SenderID != currentUserID(c) {
		return service.UnauthorizedError
	}
	return nil
}

// openUploads 打开所有上传文件，返回的 closer 负责统一关闭
func openUploads(headers []*multipart.FileHeader) ([]*service.UploadFile, func(), error) {
	files := make([]*service.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			if err := f.Close(); err != nil {
				log.Warn("failed to close upload", "err", err)
			}
		}
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, service.ErrInvalidRequest
		}
		opened = append(opened, f)
		files = append(files, &service.UploadFile{FileName: h.Filename, Size: h.Size, Reader: f})
	}
	return files, closeAll, nil
}

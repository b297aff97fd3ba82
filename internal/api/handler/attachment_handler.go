package handler

import (
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/service"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
	messageService    service.MessageService
}

func NewAttachmentHandler(attachmentService service.AttachmentService, messageService service.MessageService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		messageService:    messageService,
	}
}

// Upload 单文件上传，返回的 ID 可用于发送消息
func (s *AttachmentHandler) Upload(c *gin.Context) {
	if limit := imConfig().MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrInvalidRequest)
		return
	}
	files, closeFiles, err := openUploads([]*multipart.FileHeader{header})
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFiles()

	res, err := s.attachmentService.Upload(c.Request.Context(), currentUserID(c), files[0])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 全局删除附件：先清除所有消息中的引用，再删除文件
func (s *AttachmentHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "attachmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	media, err := s.attachmentService.GetAttachment(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if media.UploaderID != currentUserID(c) {
		response.Error(c, service.UnauthorizedError)
		return
	}

	if err = s.messageService.RemoveAttachment(ctx, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

package dto

import "time"

// CreateMessageReq 发送消息，REST 使用 multipart 表单，实时通道使用 JSON
type CreateMessageReq struct {
	ConversationID     uint64   `form:"conversationId" json:"conversationId" binding:"required"`
	SenderID           uint64   `form:"senderId" json:"senderId"`
	ReceiverID         uint64   `form:"receiverId" json:"receiverId" binding:"required"`
	Text               *string  `form:"text" json:"text"`
	MessageType        string   `form:"messageType" json:"messageType"`
	RepliedToMessageID *string  `form:"repliedToMessageId" json:"repliedToMessageId"`
	AttachmentIDs      []uint64 `form:"attachmentIds" json:"attachmentIds"`
	NeedsTranslation   bool     `form:"needsTranslation" json:"needsTranslation"`
}

// UpdateMessageReq 编辑消息正文
type UpdateMessageReq struct {
	Text             string `json:"text" binding:"required"`
	NeedsTranslation bool   `json:"needsTranslation"`
}

// UpdateDeletionReq 软删除/恢复
type UpdateDeletionReq struct {
	IsDeleted *bool `json:"isDeleted" binding:"required"`
}

// MessageContentDTO 多语言消息体
type MessageContentDTO struct {
	OriginalText   string `json:"originalText"`
	SourceLanguage string `json:"sourceLanguage"`
	TranslationEn  string `json:"translationEn"`
	TranslationFr  string `json:"translationFr"`
	TranslationEs  string `json:"translationEs"`
}

// MessageDTO 消息详情，附件与被回复消息在读取时解析
type MessageDTO struct {
	ID                 string             `json:"id"`
	ConversationID     uint64             `json:"conversationId"`
	SenderID           uint64             `json:"senderId"`
	ReceiverID         uint64             `json:"receiverId"`
	Content            *MessageContentDTO `json:"content"`
	MessageType        string             `json:"messageType"`
	Status             string             `json:"status"`
	ReadAt             *time.Time         `json:"readAt"`
	RepliedToMessageID *string            `json:"repliedToMessageId"`
	RepliedToMessage   *MessageDTO        `json:"repliedToMessage"`
	Attachments        []*MediaDTO        `json:"attachments"`
	IsDeleted          bool               `json:"isDeleted"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// MessagesReadDTO 已读回执
type MessagesReadDTO struct {
	ConversationID uint64 `json:"conversationId"`
	ReaderID       uint64 `json:"readerId"`
	PeerID         uint64 `json:"peerId"`
	Count          int64  `json:"count"`
}

package dto

// 实时通道入站事件载荷，解码后按 validate 标签校验

type CheckOnlineStatusPayload struct {
	UserIDToCheck uint64 `json:"userIdToCheck" validate:"required"`
}

type SendMessagePayload struct {
	SenderID         uint64   `json:"senderId"`
	ReceiverID       uint64   `json:"receiverId" validate:"required"`
	ConversationID   uint64   `json:"conversationId" validate:"required"`
	Message          *string  `json:"message"`
	MessageType      string   `json:"messageType"`
	RepliedToMessage *string  `json:"repliedToMessage"`
	AttachmentIDs    []uint64 `json:"attachmentIds" validate:"dive,required"`
	NeedsTranslation bool     `json:"needsTranslation"`
}

type EditMessagePayload struct {
	MessageID        string `json:"messageId" validate:"required"`
	UpdatedMessage   string `json:"updatedMessage" validate:"required"`
	SenderID         uint64 `json:"senderId"`
	ReceiverID       uint64 `json:"receiverId"`
	NeedsTranslation bool   `json:"needsTranslation"`
}

type ToggleDeletionPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	IsDeleted bool   `json:"isDeleted"`
}

type DeleteAttachmentPayload struct {
	MessageID    string `json:"messageId" validate:"required"`
	AttachmentID uint64 `json:"attachmentId" validate:"required"`
}

type MarkReadPayload struct {
	ConversationID uint64 `json:"conversationId" validate:"required"`
}

// 实时通道出站事件载荷

type UserStatusDTO struct {
	UserID   uint64 `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

type AttachmentDeletedDTO struct {
	MessageID    string `json:"messageId"`
	AttachmentID uint64 `json:"attachmentId"`
}

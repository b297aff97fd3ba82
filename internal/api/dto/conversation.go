package dto

import "time"

// CreateConversationReq 创建会话
type CreateConversationReq struct {
	SenderID   uint64 `json:"senderId" binding:"required"`
	ReceiverID uint64 `json:"receiverId" binding:"required"`
}

// UpdateLastMessageReq 更新会话最后一条消息
type UpdateLastMessageReq struct {
	LastMessageID string `json:"lastMessageId" binding:"required"`
	LastMessage   string `json:"lastMessage"`
}

// ConversationDTO 会话详情，附带双方资料与最后一条消息
type ConversationDTO struct {
	ID              uint64          `json:"id"`
	SenderID        uint64          `json:"senderId"`
	ReceiverID      uint64          `json:"receiverId"`
	Sender          *UserProfileDTO `json:"sender"`
	Receiver        *UserProfileDTO `json:"receiver"`
	LastMessageID   *string         `json:"lastMessageId"`
	LastMessage     string          `json:"lastMessage"`
	LastMessageInfo *MessageDTO     `json:"lastMessageInfo,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

package ws

import (
	"github.com/goccy/go-json"
)

const (
	EventAck = "ack"

	EventCheckUserOnlineStatus = "checkUserOnlineStatus"
	EventSendMessage           = "sendMessage"
	EventEditMessage           = "editMessage"
	EventToggleMessageDeletion = "toggleMessageDeletion"
	EventDeleteAttachment      = "deleteAttachment"
	EventMarkMessagesRead      = "markMessagesRead"

	EventUserOnlineStatus       = "userOnlineStatus"
	EventNewMessage             = "newMessage"
	EventMessageEdited          = "messageEdited"
	EventMessageDeletionToggled = "messageDeletionToggled"
	EventAttachmentDeleted      = "attachmentDeleted"
	EventMessagesRead           = "messagesRead"
)

// InboundFrame 客户端上行帧
type InboundFrame struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// Frame 下行帧
type Frame struct {
	Event string `json:"event"`
	AckID string `json:"ackId,omitempty"`
	Data  any    `json:"data"`
}

// Ack 每个上行事件都会得到一个确认，只发给调用方
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

package model

import (
	"fmt"
	"time"
)

// Conversation 单聊会话表，sender/receiver 只是历史命名，不代表方向
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID      uint64    `gorm:"not null;index:idx_sender" json:"senderId"`
	ReceiverID    uint64    `gorm:"not null;index:idx_receiver" json:"receiverId"`
	PeerKey       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"-"` // 小ID_大ID，保证无序对唯一
	LastMessageID *string   `gorm:"type:varchar(32)" json:"lastMessageId"`
	LastMessage   string    `gorm:"type:text;not null" json:"lastMessage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `gorm:"index" json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// PeerOf 返回会话中另一方的 ID
func (c *Conversation) PeerOf(userID uint64) uint64 {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// HasMember 判断用户是否是会话参与者
func (c *Conversation) HasMember(userID uint64) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

// BuildPeerKey 生成与顺序无关的会话标识
func BuildPeerKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

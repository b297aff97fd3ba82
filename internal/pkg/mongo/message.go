package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeVideo  = "video"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// ValidMessageType 判断消息类型是否合法
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Message MongoDB 消息明细模型
type Message struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID     uint64             `bson:"conversation_id" json:"conversationId"` // 关联 MySQL 的会话 ID
	SenderID           uint64             `bson:"sender_id" json:"senderId"`
	ReceiverID         uint64             `bson:"receiver_id" json:"receiverId"`
	Content            *MessageContent    `bson:"content,omitempty" json:"content"`
	MessageType        string             `bson:"message_type" json:"messageType"`
	Status             string             `bson:"status" json:"status"`
	ReadAt             *time.Time         `bson:"read_at,omitempty" json:"readAt"`
	RepliedToMessageID *string            `bson:"replied_to_message_id,omitempty" json:"repliedToMessageId"`
	Attachments        []uint64           `bson:"attachments" json:"attachments"` // media 表 ID，弱引用
	IsDeleted          bool               `bson:"is_deleted" json:"isDeleted"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// MessageContent 多语言消息体，未翻译时只有 en 字段等于原文
type MessageContent struct {
	OriginalText   string `bson:"original_text" json:"originalText"`
	SourceLanguage string `bson:"source_language" json:"sourceLanguage"`
	TranslationEn  string `bson:"translation_en" json:"translationEn"`
	TranslationFr  string `bson:"translation_fr" json:"translationFr"`
	TranslationEs  string `bson:"translation_es" json:"translationEs"`
}

// Hex 返回字符串形式的消息 ID
func (m *Message) Hex() string {
	return m.ID.Hex()
}

package model

import "time"

const (
	MediaStatusActive   int8 = 1
	MediaStatusOrphaned int8 = 2 // 引用已清除但对象存储删除失败，等待清理任务
)

// Media 附件元数据，对象本体在 MinIO
type Media struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectKey  string    `gorm:"type:varchar(512);not null;uniqueIndex" json:"objectKey"`
	FileName   string    `gorm:"type:varchar(255);not null;default:''" json:"fileName"`
	MimeType   string    `gorm:"type:varchar(128);not null" json:"mimeType"`
	Size       int64     `gorm:"not null;default:0" json:"size"`
	Width      int       `gorm:"not null;default:0" json:"width"`
	Height     int       `gorm:"not null;default:0" json:"height"`
	UploaderID uint64    `gorm:"not null;default:0;index" json:"uploaderId"`
	Status     int8      `gorm:"not null;default:1;index" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Media) TableName() string { return "media" }

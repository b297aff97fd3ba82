package dto

import "time"

// MediaDTO 附件解析结果
type MediaDTO struct {
	ID         uint64    `json:"id"`
	URL        string    `json:"url"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	UploaderID uint64    `json:"uploaderId"`
	CreatedAt  time.Time `json:"createdAt"`
}

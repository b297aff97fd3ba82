package util

import (
	"Rendezvous/internal/pkg/consts"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// GetSafeContentType 通过文件头嗅探真实的 MIME 类型，并将读取位置复位
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := reader.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if idx := strings.Index(contentType, ";"); idx > 0 {
		contentType = contentType[:idx]
	}
	return contentType, nil
}

// ImageDimensions 解码图片并返回按 EXIF 方向校正后的宽高
func ImageDimensions(data []byte) (int, int, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

// MessageTypeOf 根据附件 MIME 推断消息类型
func MessageTypeOf(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, consts.MimePrefixImage):
		return "image"
	case strings.HasPrefix(mimeType, consts.MimePrefixVideo):
		return "video"
	default:
		return "file"
	}
}

package web

import (
	"fmt"
	"strings"
)

const (
	MimeTypeJSON     = "application/json"
	MimeTypeJpeg     = "image/jpeg"
	MimeTypePng      = "image/png"
	HeaderAccept     = "Accept"
	HeaderUserAgent  = "User-Agent"
	DefaultUserAgent = "Simulchip/0.1"
)

// NewMimeType creates a MimeType from the given content-type.
func NewMimeType(contentType string) MimeType {
	ct := strings.Split(contentType, ";")[0]

	return MimeType{value: strings.TrimSpace(strings.ToLower(ct))}
}

type MimeType struct {
	value string
}

// FileExt returns the file extension for the mime-type.
// An error is returned for unsupported mime-types.
func (m MimeType) FileExt() (string, error) {
	switch m.value {
	case MimeTypeJSON:
		return "json", nil
	case MimeTypeJpeg:
		return "jpg", nil
	case MimeTypePng:
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported mime type %s", m.value)
	}
}

// IsImage returns true for jpeg and png mime-types.
func (m MimeType) IsImage() bool {
	return m.value == MimeTypeJpeg || m.value == MimeTypePng
}

// Raw returns the extracted mime-type.
func (m MimeType) Raw() string {
	return m.value
}

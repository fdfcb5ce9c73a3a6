package dto

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/[a-z]+;base64,`)

// EncodeJPEGDataURL wraps JPEG bytes as a data URL, the form browsers produce with canvas.toDataURL.
func EncodeJPEGDataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

// DecodeDataURL returns the image bytes of a data URL or a bare base64 string.
func DecodeDataURL(payload string) ([]byte, error) {
	raw := dataURLPrefix.ReplaceAllString(payload, "")
	if raw == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

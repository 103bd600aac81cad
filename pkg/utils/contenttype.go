package utils

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var contentTypes = map[string]string{
	".txt":  "text/plain",
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

const defaultContentType = "application/octet-stream"

// DetectContentType sniffs data and prefers the extension table when the
// sniffed type is generic text or binary.
func DetectContentType(filename string, data []byte) string {
	byExt, known := contentTypes[strings.ToLower(filepath.Ext(filename))]
	if len(data) == 0 {
		return ContentTypeFromExtension(filename)
	}

	mt := mimetype.Detect(data)
	generic := mt.Is(defaultContentType) || mt.Is("text/plain")
	if generic && known {
		return byExt
	}
	return mt.String()
}

func ContentTypeFromExtension(filename string) string {
	if contentType, exists := contentTypes[strings.ToLower(filepath.Ext(filename))]; exists {
		return contentType
	}
	return defaultContentType
}

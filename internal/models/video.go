package models

import "time"

// VideoObjectInfo is a per-request projection of a storage HEAD result.
type VideoObjectInfo struct {
	Path         string
	SizeBytes    int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

type VideoInfoResponse struct {
	VideoPath    string  `json:"video_path"`
	FileSize     int64   `json:"file_size"`
	ContentType  string  `json:"content_type"`
	LastModified *string `json:"last_modified"`
	ETag         string  `json:"etag"`
	SizeMB       float64 `json:"size_mb"`
}

type VideoEntry struct {
	Path         string  `json:"path"`
	FileName     string  `json:"filename"`
	Size         int64   `json:"size"`
	SizeMB       float64 `json:"size_mb"`
	LastModified string  `json:"last_modified"`
	StreamURL    string  `json:"stream_url"`
}

type VideoListing struct {
	TotalVideos int          `json:"total_videos"`
	Videos      []VideoEntry `json:"videos"`
}

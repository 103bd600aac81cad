package models

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

// DetailResponse is the HTTP error body.
type DetailResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type UploadConfirmation struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

type UploadResponse struct {
	Message string             `json:"message"`
	Details UploadConfirmation `json:"details"`
}

type TokenResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

package auth

import (
	"bytes"
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"

	"transfers/internal/models"
	"transfers/internal/result"
)

const (
	MsgMissingTarget    = "Token does not name a bucket and key."
	MsgInvalidFilesData = "Invalid files data in token."
)

// Claims is the payload of a transfer token. Upload tokens carry Bucket and
// Key, download tokens carry Files.
type Claims struct {
	jwt.RegisteredClaims
	Bucket string          `json:"bucket,omitempty"`
	Key    string          `json:"key,omitempty"`
	Files  json.RawMessage `json:"files,omitempty"`
}

// UploadTarget returns the object an upload token grants access to.
func (c *Claims) UploadTarget() (models.UploadTarget, *result.Error) {
	if c.Bucket == "" || c.Key == "" {
		return models.UploadTarget{}, result.New(result.KindBadRequest, MsgMissingTarget)
	}
	return models.UploadTarget{Bucket: c.Bucket, Key: c.Key}, nil
}

// Manifest decodes the files claim. An absent, null or empty claim is a bad
// request; a claim naming buckets without files is not.
func (c *Claims) Manifest() (models.DownloadManifest, *result.Error) {
	raw := bytes.TrimSpace(c.Files)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.DownloadManifest{}, result.New(result.KindBadRequest, result.MsgNoFilesInToken)
	}

	var manifest models.DownloadManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return models.DownloadManifest{}, result.Wrap(result.KindBadRequest, MsgInvalidFilesData, err)
	}
	if len(manifest.Buckets) == 0 {
		return models.DownloadManifest{}, result.New(result.KindBadRequest, result.MsgNoFilesInToken)
	}
	return manifest, nil
}

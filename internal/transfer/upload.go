package transfer

import (
	"bytes"
	"context"

	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/pkg/logger"
	"transfers/pkg/utils"
)

const (
	MsgUploaded   = "File uploaded successfully"
	StatusSuccess = "success"
)

// UploadRequest is one file destined for the token's bucket and key.
// FileName is the client-side name and only feeds content-type detection.
type UploadRequest struct {
	Target   models.UploadTarget
	FileName string
	Body     []byte
}

// Upload stores the body with a single Put. There is no retry; repeating an
// upload overwrites the object.
func (s *Service) Upload(ctx context.Context, req UploadRequest) result.Result[models.UploadConfirmation] {
	log := logger.Ctx(ctx).With().
		Str("bucket", req.Target.Bucket).
		Str("key", req.Target.Key).
		Logger()

	name := req.FileName
	if name == "" {
		name = req.Target.Key
	}
	contentType := utils.DetectContentType(name, req.Body)

	err := s.store.Put(ctx, req.Target.Bucket, req.Target.Key, bytes.NewReader(req.Body), contentType)
	if err != nil {
		rerr := result.FromStorage(err)
		log.Error().Err(err).Str("kind", rerr.Kind.String()).Msg("upload failed")
		s.metrics.Uploads.WithLabelValues(outcomeLabel(rerr)).Inc()
		return result.Err[models.UploadConfirmation](rerr)
	}

	s.metrics.Uploads.WithLabelValues("success").Inc()
	s.metrics.UploadedBytes.Add(float64(len(req.Body)))
	log.Info().
		Int("size", len(req.Body)).
		Str("content_type", contentType).
		Msg("file uploaded")

	return result.Ok(models.UploadConfirmation{
		Message:     MsgUploaded,
		Status:      StatusSuccess,
		Bucket:      req.Target.Bucket,
		Key:         req.Target.Key,
		Size:        int64(len(req.Body)),
		ContentType: contentType,
	})
}

func outcomeLabel(err *result.Error) string {
	if err == nil {
		return "success"
	}
	return err.Kind.String()
}

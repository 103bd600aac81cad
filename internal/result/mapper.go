package result

import (
	"context"
	"errors"
	"net/http"

	"transfers/internal/models"
	"transfers/internal/storage"
)

const (
	MsgBucketNotFound  = "Bucket not found"
	MsgClientError     = "Client error occurred during file upload"
	MsgUnexpected      = "An unexpected error occurred"
	MsgNoFiles         = "No files found to download."
	MsgNoFilesInToken  = "No files data found in token."
	MsgObjectNotFound  = "Object not found"
	MsgAccessDenied    = "Access denied"
	MsgInvalidRange    = "Requested range not satisfiable"
	MsgCredentials     = "Storage credentials not configured"
	MsgRequestCanceled = "Request canceled"
)

// FromStorage classifies an ObjectStore error. Messages are generic; callers
// that know more about the object replace them.
func FromStorage(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}

	switch {
	case errors.Is(err, storage.ErrBucketNotFound):
		return Wrap(KindNotFound, MsgBucketNotFound, err)
	case errors.Is(err, storage.ErrObjectNotFound):
		return Wrap(KindNotFound, MsgObjectNotFound, err)
	case errors.Is(err, storage.ErrAccessDenied):
		return Wrap(KindForbidden, MsgAccessDenied, err)
	case errors.Is(err, storage.ErrInvalidRange):
		return Wrap(KindRangeNotSatisfiable, MsgInvalidRange, err)
	case errors.Is(err, storage.ErrCredentials):
		return Wrap(KindInternal, MsgCredentials, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindInternal, MsgRequestCanceled, err)
	case storage.IsClientError(err):
		return Wrap(KindInternal, MsgClientError, err)
	default:
		return Wrap(KindInternal, MsgUnexpected, err)
	}
}

// ForDownload maps a download outcome to its HTTP status. The error is set
// only when no archive should be sent.
func ForDownload(out models.DownloadOutcome) (int, *Error) {
	switch out.Kind {
	case models.OutcomeComplete:
		return http.StatusOK, nil
	case models.OutcomePartial:
		return http.StatusPartialContent, nil
	case models.OutcomeEmpty:
		return http.StatusNotFound, New(KindNotFound, MsgNoFiles)
	default:
		return http.StatusInternalServerError, New(KindInternal, MsgUnexpected)
	}
}

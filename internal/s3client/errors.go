package s3client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"transfers/internal/storage"
)

// classify maps an SDK error onto the storage sentinels. Errors that match no
// sentinel keep the SDK error so storage.IsClientError reports them.
func classify(op, bucket, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return storage.NewError(op, bucket, key, err)
	}

	var (
		noSuchBucket *types.NoSuchBucket
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
	)
	switch {
	case errors.As(err, &noSuchBucket):
		return storage.NewError(op, bucket, key, storage.ErrBucketNotFound)
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		return storage.NewError(op, bucket, key, storage.ErrObjectNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return storage.NewError(op, bucket, key, storage.ErrBucketNotFound)
		case "NoSuchKey", "NotFound", "404":
			return storage.NewError(op, bucket, key, storage.ErrObjectNotFound)
		case "AccessDenied", "Forbidden", "403", "AllAccessDisabled":
			return storage.NewError(op, bucket, key, storage.ErrAccessDenied)
		case "InvalidRange":
			return storage.NewError(op, bucket, key, storage.ErrInvalidRange)
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return storage.NewError(op, bucket, key, storage.ErrCredentials)
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return storage.NewError(op, bucket, key, storage.ErrObjectNotFound)
		case http.StatusForbidden:
			return storage.NewError(op, bucket, key, storage.ErrAccessDenied)
		case http.StatusRequestedRangeNotSatisfiable:
			return storage.NewError(op, bucket, key, storage.ErrInvalidRange)
		}
	}

	// The SDK only reports a missing credential chain through its message.
	if strings.Contains(err.Error(), "failed to retrieve credentials") {
		return storage.NewError(op, bucket, key, storage.ErrCredentials)
	}

	return storage.NewError(op, bucket, key, err)
}

package video

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/samber/lo"

	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/internal/storage"
	"transfers/pkg/logger"
	"transfers/pkg/utils"
)

const (
	StreamPath    = "/api/video/stream"
	MsgListVideos = "Error listing videos"
)

var videoExtensions = []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv"}

type Catalog struct {
	store  storage.ObjectStore
	bucket string
}

func NewCatalog(store storage.ObjectStore, bucket string) *Catalog {
	return &Catalog{store: store, bucket: bucket}
}

func IsVideo(key string) bool {
	return lo.Contains(videoExtensions, strings.ToLower(path.Ext(key)))
}

func StreamURL(key string) string {
	return StreamPath + "?video_path=" + url.QueryEscape(key)
}

// Info describes one video from its HEAD metadata.
func (c *Catalog) Info(ctx context.Context, key string) (models.VideoInfoResponse, *result.Error) {
	obj, err := c.store.Head(ctx, c.bucket, key)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("video_path", key).Msg("failed to get video info")
		return models.VideoInfoResponse{}, headError(key, err)
	}

	info := models.VideoObjectInfo{
		Path:         key,
		SizeBytes:    obj.Size,
		ContentType:  lo.Ternary(obj.ContentType == "", DefaultContentType, obj.ContentType),
		LastModified: obj.LastModified,
		ETag:         obj.ETag,
	}

	var lastModified *string
	if !info.LastModified.IsZero() {
		lastModified = lo.ToPtr(utils.FormatTime(info.LastModified))
	}
	return models.VideoInfoResponse{
		VideoPath:    info.Path,
		FileSize:     info.SizeBytes,
		ContentType:  info.ContentType,
		LastModified: lastModified,
		ETag:         info.ETag,
		SizeMB:       utils.SizeMB(info.SizeBytes),
	}, nil
}

// List returns the videos under prefix, in key order.
func (c *Catalog) List(ctx context.Context, prefix string) (models.VideoListing, *result.Error) {
	objects, err := c.store.List(ctx, c.bucket, prefix)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("prefix", prefix).Msg("failed to list videos")
		if errors.Is(err, storage.ErrAccessDenied) {
			return models.VideoListing{}, result.Wrap(result.KindForbidden, MsgAccessDenied, err)
		}
		return models.VideoListing{}, result.Wrap(result.KindInternal, MsgListVideos, err)
	}

	videos := lo.FilterMap(objects, func(obj storage.ObjectInfo, _ int) (models.VideoEntry, bool) {
		if !IsVideo(obj.Key) {
			return models.VideoEntry{}, false
		}
		return models.VideoEntry{
			Path:         obj.Key,
			FileName:     path.Base(obj.Key),
			Size:         obj.Size,
			SizeMB:       utils.SizeMB(obj.Size),
			LastModified: utils.FormatTime(obj.LastModified),
			StreamURL:    StreamURL(obj.Key),
		}, true
	})

	logger.Ctx(ctx).Info().Str("prefix", prefix).Int("count", len(videos)).Msg("listed videos")
	return models.VideoListing{TotalVideos: len(videos), Videos: videos}, nil
}

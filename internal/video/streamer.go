// Package video serves stored media files with HTTP byte-range support and
// lists the video catalog.
package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strconv"

	"transfers/internal/result"
	"transfers/internal/storage"
	"transfers/pkg/logger"
)

const (
	ChunkSize          = 8192
	DefaultContentType = "video/mp4"
	cacheControl       = "public, max-age=3600"

	MsgAccessDenied  = "Access denied to video"
	MsgInternal      = "Internal server error"
	MsgRetrieveVideo = "Error retrieving video"
)

var ErrStreamConsumed = errors.New("video: stream already consumed")

type Streamer struct {
	store  storage.ObjectStore
	bucket string
}

func NewStreamer(store storage.ObjectStore, bucket string) *Streamer {
	return &Streamer{store: store, bucket: bucket}
}

// Stream is an opened ranged read. Headers and Status are final once Open
// returns; the body is pulled lazily through Chunks.
type Stream struct {
	Status int
	Header http.Header
	Range  RangeRequest
	Size   uint64

	ctx      context.Context
	body     io.ReadCloser
	consumed bool
}

// Open resolves the object's size and type, then opens exactly the
// requested span. Any non-empty rangeHeader produces a 206 response.
func (s *Streamer) Open(ctx context.Context, key, rangeHeader string) (*Stream, *result.Error) {
	log := logger.Ctx(ctx).With().Str("video_path", key).Logger()

	info, err := s.store.Head(ctx, s.bucket, key)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat video")
		return nil, headError(key, err)
	}
	size := uint64(max(info.Size, 0))
	contentType := info.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	header := http.Header{}
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", cacheControl)

	if size == 0 {
		if rangeHeader != "" {
			return nil, result.New(result.KindRangeNotSatisfiable, result.MsgInvalidRange)
		}
		header.Set("Content-Length", "0")
		return &Stream{Status: http.StatusOK, Header: header, ctx: ctx}, nil
	}

	rng := ParseRange(rangeHeader, size)
	body, err := s.store.GetRange(ctx, s.bucket, key, rng.Start, rng.End)
	if err != nil {
		log.Error().Err(err).Str("range", rangeHeader).Msg("failed to open video range")
		return nil, getError(err)
	}

	status := http.StatusOK
	header.Set("Content-Length", strconv.FormatUint(rng.Length(), 10))
	if rangeHeader != "" {
		status = http.StatusPartialContent
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
	}

	log.Debug().
		Uint64("start", rng.Start).
		Uint64("end", rng.End).
		Uint64("size", size).
		Msg("streaming video")

	return &Stream{
		Status: status,
		Header: header,
		Range:  rng,
		Size:   size,
		ctx:    ctx,
		body:   body,
	}, nil
}

// Chunks yields the body in ChunkSize pieces; only the last may be shorter.
// A yielded slice is valid until the next iteration. The sequence can be
// ranged over once; later calls yield ErrStreamConsumed.
func (st *Stream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if st.consumed {
			yield(nil, ErrStreamConsumed)
			return
		}
		st.consumed = true
		if st.body == nil {
			return
		}
		defer st.Close()

		buf := make([]byte, ChunkSize)
		for {
			if err := st.ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			n, err := io.ReadFull(st.body, buf)
			if n > 0 && !yield(buf[:n], nil) {
				return
			}
			switch {
			case err == nil:
				continue
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				return
			default:
				yield(nil, err)
				return
			}
		}
	}
}

func (st *Stream) Close() error {
	if st.body == nil {
		return nil
	}
	body := st.body
	st.body = nil
	return body.Close()
}

func headError(key string, err error) *result.Error {
	switch {
	case errors.Is(err, storage.ErrObjectNotFound), errors.Is(err, storage.ErrBucketNotFound):
		return result.Wrap(result.KindNotFound, "Video not found: "+key, err)
	case errors.Is(err, storage.ErrAccessDenied):
		return result.Wrap(result.KindForbidden, MsgAccessDenied, err)
	default:
		return result.Wrap(result.KindInternal, MsgInternal, err)
	}
}

func getError(err error) *result.Error {
	switch {
	case errors.Is(err, storage.ErrInvalidRange):
		return result.Wrap(result.KindRangeNotSatisfiable, result.MsgInvalidRange, err)
	case errors.Is(err, storage.ErrAccessDenied):
		return result.Wrap(result.KindForbidden, MsgAccessDenied, err)
	default:
		return result.Wrap(result.KindInternal, MsgRetrieveVideo, err)
	}
}

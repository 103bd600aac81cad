// Package transfer implements the upload and bundled-download operations on
// top of an ObjectStore.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/internal/storage"
)

type Action string

const (
	ActionPutFile Action = "put_file"
	ActionGetFile Action = "get_file"
)

var ErrUnknownAction = errors.New("transfer: unknown action")

// Request carries the input of one action. Only the field matching the
// action is read.
type Request struct {
	Upload   *UploadRequest
	Manifest *models.DownloadManifest
}

type Response struct {
	Upload   *models.UploadConfirmation
	Download *models.DownloadOutcome
}

type Handler func(ctx context.Context, req Request) (Response, error)

type Service struct {
	store    storage.ObjectStore
	workers  int
	now      func() time.Time
	metrics  *Metrics
	handlers map[Action]Handler
}

type Option func(*Service)

// WithWorkers bounds how many folders are fetched at once. Values below one
// are treated as one.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store storage.ObjectStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		workers: 4,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	s.handlers = map[Action]Handler{
		ActionPutFile: s.handlePut,
		ActionGetFile: s.handleGet,
	}
	return s
}

// Dispatch runs the handler registered for action. Classified failures come
// back as *result.Error.
func (s *Service) Dispatch(ctx context.Context, action Action, req Request) (Response, error) {
	handler, ok := s.handlers[action]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return handler(ctx, req)
}

func (s *Service) handlePut(ctx context.Context, req Request) (Response, error) {
	if req.Upload == nil {
		return Response{}, result.New(result.KindBadRequest, "upload request is missing")
	}
	res := s.Upload(ctx, *req.Upload)
	if !res.IsOk() {
		return Response{}, res.Failure()
	}
	confirmation := res.Value()
	return Response{Upload: &confirmation}, nil
}

func (s *Service) handleGet(ctx context.Context, req Request) (Response, error) {
	if req.Manifest == nil {
		return Response{}, result.New(result.KindBadRequest, result.MsgNoFilesInToken)
	}
	outcome, err := s.Download(ctx, *req.Manifest)
	if err != nil {
		return Response{}, result.FromStorage(err)
	}
	return Response{Download: &outcome}, nil
}

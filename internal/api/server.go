// Package api exposes the transfer and video operations over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"transfers/internal/auth"
	"transfers/internal/transfer"
	"transfers/internal/video"
)

// Prefixes every route is served under.
var Prefixes = []string{"/api", "/transfers/api"}

const defaultMaxUploadBytes = 512 << 20

type Config struct {
	Transfers *transfer.Service
	Streamer  *video.Streamer
	Catalog   *video.Catalog
	Verifier  auth.Verifier

	AllowedOrigins   []string
	VideoRequireAuth bool
	MaxUploadBytes   int64

	// Registerer receives the request metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

type Server struct {
	transfers *transfer.Service
	streamer  *video.Streamer
	catalog   *video.Catalog
	verifier  auth.Verifier

	videoRequireAuth bool
	maxUploadBytes   int64

	mux     *http.ServeMux
	handler http.Handler

	metricsRequest         *prometheus.CounterVec
	metricsRequestDuration *prometheus.HistogramVec
}

func NewServer(cfg Config) *Server {
	factory := promauto.With(cfg.Registerer)
	s := &Server{
		transfers:        cfg.Transfers,
		streamer:         cfg.Streamer,
		catalog:          cfg.Catalog,
		verifier:         cfg.Verifier,
		videoRequireAuth: cfg.VideoRequireAuth,
		maxUploadBytes:   cfg.MaxUploadBytes,
		mux:              http.NewServeMux(),
		metricsRequest: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_http_requests_total",
			Help: "Number of HTTP requests received",
		}, []string{"route", "status_code"}),
		metricsRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transfers_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status_code"}),
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}

	s.routes()
	s.handler = chain(s.mux,
		recoverPanics,
		requestContext,
		cors(cfg.AllowedOrigins),
	)
	return s
}

func (s *Server) routes() {
	s.handle("GET /health", "health", s.handleHealth)
	s.handle("GET /transfers/api/health", "health", s.handleHealth)

	for _, p := range Prefixes {
		s.handle("GET "+p+"/video/stream", "video_stream", s.handleVideoStream)
		s.handle("GET "+p+"/video/info", "video_info", s.handleVideoInfo)
		s.handle("GET "+p+"/videos/list", "videos_list", s.handleVideosList)
		s.handle("PUT "+p+"/file", "upload", s.handleUpload)
		s.handle("GET "+p+"/file", "download", s.handleDownload)
		s.handle("POST "+p+"/file", "download", s.handleDownloadPost)
	}
}

// handle registers h and records its count and latency under route.
func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			code := strconv.Itoa(rec.Status())
			s.metricsRequest.WithLabelValues(route, code).Inc()
			s.metricsRequestDuration.WithLabelValues(route, code).Observe(time.Since(start).Seconds())
		}()
		h(rec, r)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// NewHTTPServer wraps handler with the timeouts the gateway runs with.
// WriteTimeout stays unset so long video streams are not cut off.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

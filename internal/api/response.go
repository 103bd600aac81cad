package api

import (
	"encoding/json"
	"net/http"

	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusRecorder) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.statusCode
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("failed to encode response")
	}
}

// writeError sends {"detail": ...}. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, rerr *result.Error) {
	if rerr == nil {
		rerr = result.New(result.KindInternal, result.MsgUnexpected)
	}
	status := rerr.Kind.Status()

	event := logger.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Ctx(r.Context()).Error()
	}
	event.Err(rerr.Err).
		Str("kind", rerr.Kind.String()).
		Int("status", status).
		Msg(rerr.Message)

	if rerr.Kind == result.KindUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, models.DetailResponse{Detail: rerr.Message})
}

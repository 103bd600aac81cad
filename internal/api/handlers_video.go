package api

import (
	"net/http"

	"transfers/internal/auth"
	"transfers/internal/result"
	"transfers/pkg/logger"
)

const MsgVideoPathRequired = "Query parameter 'video_path' is required."

// authorizeVideo enforces the optional bearer requirement on video routes.
func (s *Server) authorizeVideo(w http.ResponseWriter, r *http.Request) bool {
	if !s.videoRequireAuth {
		return true
	}
	if _, rerr := auth.Authenticate(s.verifier, r.Header.Get("Authorization")); rerr != nil {
		writeError(w, r, rerr)
		return false
	}
	return true
}

func videoPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("video_path")
	if key == "" {
		writeError(w, r, result.New(result.KindBadRequest, MsgVideoPathRequired))
		return "", false
	}
	return key, true
}

func (s *Server) handleVideoStream(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeVideo(w, r) {
		return
	}
	key, ok := videoPath(w, r)
	if !ok {
		return
	}

	stream, rerr := s.streamer.Open(r.Context(), key, r.Header.Get("Range"))
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	defer stream.Close()

	for name, values := range stream.Header {
		w.Header()[name] = values
	}
	w.WriteHeader(stream.Status)

	rc := http.NewResponseController(w)
	for chunk, err := range stream.Chunks() {
		if err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).Str("video_path", key).Msg("video stream interrupted")
			return
		}
		if _, err := w.Write(chunk); err != nil {
			logger.Ctx(r.Context()).Debug().Err(err).Str("video_path", key).Msg("client went away")
			return
		}
		_ = rc.Flush()
	}
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeVideo(w, r) {
		return
	}
	key, ok := videoPath(w, r)
	if !ok {
		return
	}

	info, rerr := s.catalog.Info(r.Context(), key)
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleVideosList(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeVideo(w, r) {
		return
	}
	listing, rerr := s.catalog.List(r.Context(), r.URL.Query().Get("prefix"))
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"transfers/internal/auth"
	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/internal/transfer"
	"transfers/pkg/logger"
)

const (
	MsgFileRequired    = "Form field 'file' is required."
	MsgFileTooLarge    = "File exceeds the upload size limit."
	MsgInvalidUpload   = "Invalid upload request."
	maxTokenBodyBytes  = 1 << 20
	multipartMemoryCap = 32 << 20
	missingFileHeader  = "X-Missing-File"
	missingCountHeader = "X-Missing-Files-Count"
	contentTypeZip     = "application/zip"
	contentDisposition = "Content-Disposition"
)

type tokenBody struct {
	JWT string `json:"jwt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// handleUpload authenticates before touching the body, so a bad token never
// costs a multipart parse.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims, rerr := auth.Authenticate(s.verifier, r.Header.Get("Authorization"))
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	target, rerr := claims.UploadTarget()
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		writeError(w, r, uploadFormError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, uploadFormError(err))
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, uploadFormError(err))
		return
	}

	resp, err := s.transfers.Dispatch(r.Context(), transfer.ActionPutFile, transfer.Request{
		Upload: &transfer.UploadRequest{Target: target, FileName: header.Filename, Body: body},
	})
	if err != nil {
		writeError(w, r, result.As(err))
		return
	}
	writeJSON(w, http.StatusOK, models.UploadResponse{
		Message: transfer.MsgUploaded,
		Details: *resp.Upload,
	})
}

func uploadFormError(err error) *result.Error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return result.Wrap(result.KindBadRequest, MsgFileTooLarge, err)
	case errors.Is(err, http.ErrMissingFile):
		return result.Wrap(result.KindBadRequest, MsgFileRequired, err)
	default:
		return result.Wrap(result.KindBadRequest, MsgInvalidUpload, err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, r.Header.Get("Authorization"))
}

// handleDownloadPost accepts the token in the Authorization header or as
// {"jwt": "..."} in the body. The header wins.
func (s *Server) handleDownloadPost(w http.ResponseWriter, r *http.Request) {
	var body tokenBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTokenBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		logger.Ctx(r.Context()).Debug().Err(err).Msg("ignoring unreadable token body")
	}

	header, rerr := auth.ResolveToken(r.Header.Get("Authorization"), body.JWT)
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	s.download(w, r, header)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, authorization string) {
	claims, rerr := auth.Authenticate(s.verifier, authorization)
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}
	manifest, rerr := claims.Manifest()
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}

	resp, err := s.transfers.Dispatch(r.Context(), transfer.ActionGetFile, transfer.Request{Manifest: &manifest})
	if err != nil {
		writeError(w, r, result.As(err))
		return
	}
	writeOutcome(w, r, *resp.Download)
}

func writeOutcome(w http.ResponseWriter, r *http.Request, out models.DownloadOutcome) {
	status, rerr := result.ForDownload(out)
	if len(out.Missing) > 0 {
		h := w.Header()
		h.Set(missingCountHeader, strconv.Itoa(len(out.Missing)))
		for _, m := range out.Missing {
			h.Add(missingFileHeader, url.PathEscape(m))
		}
	}
	if rerr != nil {
		writeError(w, r, rerr)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypeZip)
	h.Set(contentDisposition, "attachment; filename="+out.FileName)
	h.Set("Content-Length", strconv.Itoa(len(out.Archive)))
	w.WriteHeader(status)
	if _, err := w.Write(out.Archive); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("failed to write archive")
	}
}

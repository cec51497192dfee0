package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
)

// Multipart form field names.
const (
	fieldVideo        = "video"
	fieldMetadata     = "metadata"
	fieldLastModified = "lastModified"
)

// AnalysesHandler handles swing submissions.
type AnalysesHandler struct {
	analyzer       Analyzer
	maxUploadBytes int64
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(a Analyzer, maxUploadBytes int64) *AnalysesHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &AnalysesHandler{analyzer: a, maxUploadBytes: maxUploadBytes}
}

// HandlePostAnalysis handles POST /analyses. The body is either multipart
// with a video file part and an optional metadata JSON part, or a JSON
// metadata object naming a hosted video.
func (h *AnalysesHandler) HandlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_analysis"
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", wrapKind(op, ErrUnsupportedMedia, err))
		return
	}

	var sub model.Submission
	switch mediaType {
	case "multipart/form-data":
		sub, err = h.readMultipart(w, r)
	case "application/json":
		err = decodeJSON(w, r, &sub.Metadata)
	default:
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", wrapKind(op, ErrUnsupportedMedia, nil))
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", wrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	sub.Metadata.HostedVideoID = strings.TrimSpace(sub.Metadata.HostedVideoID)

	writeJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), sub))
}

func (h *AnalysesHandler) readMultipart(w http.ResponseWriter, r *http.Request) (model.Submission, error) {
	var sub model.Submission
	if r.ContentLength > h.maxUploadBytes {
		return sub, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return sub, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if raw := r.FormValue(fieldMetadata); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Metadata); err != nil {
			return sub, err
		}
	}

	f, hdr, err := r.FormFile(fieldVideo)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return sub, nil
	case err != nil:
		return sub, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return sub, err
	}
	modTime := time.Time{}
	if ms, err := strconv.ParseInt(r.FormValue(fieldLastModified), 10, 64); err == nil && ms > 0 {
		modTime = time.UnixMilli(ms)
	}
	sub.File = &model.VideoFile{
		Name:     hdr.Filename,
		MIMEType: hdr.Header.Get("Content-Type"),
		Size:     hdr.Size,
		ModTime:  modTime,
		Data:     data,
	}
	return sub, nil
}

package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkovalev/mybooks-backend/internal/service/importer"
)

// importService defines the minimal interface needed by ImportHandler.
type importService interface {
	ImportCSV(ctx context.Context, csvText string) (*importer.ImportResult, error)
}

// ImportHandler serves the CSV upload endpoint.
type ImportHandler struct {
	svc            importService
	log            *slog.Logger
	maxUploadBytes int64
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(svc importService, logger *slog.Logger, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		svc:            svc,
		log:            logger.With("handler", "import"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /api/import. The body is the raw CSV export, either
// directly or as the "file" field of a multipart form. A grammar violation
// rejects the whole upload with 422; row-level issues come back in the
// result next to the rows that did import.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	csvText, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "cannot read upload")
		return
	}

	result, err := h.svc.ImportCSV(r.Context(), csvText)
	if err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ImportHandler) readUpload(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

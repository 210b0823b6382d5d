package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/transport"
)

const uploadFormField = "file"

type Handler struct {
	*transport.BaseHandler
	Importer      Importer
	UploadDir     string
	MaxUploadSize int64
}

func NewHandler(baseHandler *transport.BaseHandler, importer Importer, config internal.UploadConfig) *Handler {
	return &Handler{
		BaseHandler:   baseHandler,
		Importer:      importer,
		UploadDir:     config.Directory,
		MaxUploadSize: config.MaxSizeBytes,
	}
}

// ImportTransactions stores the uploaded file and imports it. A failed
// import leaves the stored upload in place for inspection.
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		h.Logger.Warn("ImportTransactions: missing upload", "error", err)
		h.HandleServiceError(w, internal.NewValidationFieldError(uploadFormField, "a file upload is required", internal.ErrCodeImportFileMissing))
		return
	}
	defer file.Close()

	if !SupportedExtension(header.Filename) {
		h.HandleServiceError(w, internal.ErrUnsupportedImportFormat)
		return
	}

	artifact, err := h.store(file, header.Filename)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Importer.Import(r.Context(), artifact)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) store(src io.Reader, originalName string) (Artifact, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(h.UploadDir, uuid.NewString()+filepath.Ext(originalName))
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	h.Logger.Debug("upload stored", "file", originalName, "path", path)
	return NewFileArtifact(path), nil
}

// ImportFile runs importer on a local file. With keep set the file survives
// a successful import.
func ImportFile(ctx context.Context, importer Importer, path string, keep bool) (*ImportResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat import file: %w", err)
	}
	var artifact Artifact = NewFileArtifact(path)
	if keep {
		artifact = Retain(artifact)
	}
	return importer.Import(ctx, artifact)
}

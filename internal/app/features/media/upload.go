package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"

	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/limits"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type uploadFields struct {
	Category string `json:"category" validate:"required,segment"`
	Group    string `json:"group" validate:"required,segment"`
	Type     string `json:"type" validate:"required,oneof=audios videos"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	URL     string `json:"url"`
	Size    int64  `json:"size"`
}

// HandleUpload handles POST /upload. The file is stored at
// <category>/<group>/<type>/<base name>, replacing any file there.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(limits.MaxUploadRequestSize); err != nil {
		jsonio.Error(w, uploadFormError(err), h.Log)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := uploadFields{
		Category: r.FormValue("category"),
		Group:    r.FormValue("group"),
		Type:     r.FormValue("type"),
	}
	if err := h.Val.StructMessage(fields, "Missing or invalid category/group/type"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonio.Error(w, apperr.Validation("No file uploaded"), h.Log)
		return
	}
	defer file.Close()

	if header.Size > limits.MaxUploadSize {
		jsonio.Error(w, apperr.Validation("File too large").WithHint("Maximum upload size is 50 MB"), h.Log)
		return
	}
	name := filepath.Base(filepath.Clean("/" + header.Filename))
	if !inputval.IsSafeSegment(name) {
		jsonio.Error(w, apperr.Validation("Invalid file name"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "media upload")
	defer cancel()

	rel := path.Join(fields.Category, fields.Group, fields.Type, name)
	info, err := h.store(ctx, rel, file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			jsonio.Error(w, apperr.Validation("Invalid file name"), h.Log)
			return
		}
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	h.Log.Info("media uploaded", zap.String("path", info.Path), zap.Int64("size", info.Size))
	jsonio.Write(w, http.StatusCreated, uploadResponse{
		Message: "File uploaded successfully",
		Path:    info.Path,
		URL:     h.Storage.URL(info.Path),
		Size:    info.Size,
	}, h.Log)
}

// uploadInfo describes a stored upload.
type uploadInfo struct {
	Path string
	Size int64
}

func (h *Handler) store(ctx context.Context, rel string, reader io.Reader, contentType string, size int64) (uploadInfo, error) {
	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := h.Storage.Put(ctx, rel, reader, opts); err != nil {
		return uploadInfo{}, fmt.Errorf("failed to store upload: %w", err)
	}
	return uploadInfo{Path: rel, Size: size}, nil
}

func uploadFormError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation("File too large").WithHint("Maximum upload size is 50 MB")
	}
	return apperr.Validation("Invalid multipart form")
}

package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"vntrips/internal/auth"
	"vntrips/pkg/client"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	httputil "vntrips/pkg/http"
	"vntrips/pkg/logger"
)

const maxFilesPerRequest = 10

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadResult is what clients store back into image fields.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type UploadHandler struct {
	storage *client.StorageClient
	cfg     *config.Config
	log     *logger.Logger
}

func NewUploadHandler(storage *client.StorageClient, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	if !caller.IsAdmin() {
		h.writeError(w, "Upload", apperrors.Forbidden("Only administrators may upload images"))
		return
	}

	if err := r.ParseMultipartForm(int64(h.cfg.MaxRequestSize)); err != nil {
		h.writeError(w, "Upload", apperrors.InvalidInput("Invalid multipart payload"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, "Upload", apperrors.InvalidInput("Missing \"image\" form field"))
		return
	}
	defer file.Close()

	result, err := h.store(r, file, header)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	if err := httputil.WriteCreated(w, "Image uploaded successfully", result); err != nil {
		h.log.Error("failed to write created response", "handler", "Upload", "error", err)
	}
}

func (h *UploadHandler) UploadMultiple(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	if !caller.IsAdmin() {
		h.writeError(w, "UploadMultiple", apperrors.Forbidden("Only administrators may upload images"))
		return
	}

	if err := r.ParseMultipartForm(int64(h.cfg.MaxRequestSize)); err != nil {
		h.writeError(w, "UploadMultiple", apperrors.InvalidInput("Invalid multipart payload"))
		return
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		h.writeError(w, "UploadMultiple", apperrors.InvalidInput("Missing \"images\" form field"))
		return
	}
	if len(headers) > maxFilesPerRequest {
		h.writeError(w, "UploadMultiple",
			apperrors.InvalidInput(fmt.Sprintf("At most %d files per request", maxFilesPerRequest)))
		return
	}

	results := make([]UploadResult, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.writeError(w, "UploadMultiple", apperrors.InvalidInput("Unreadable file: "+header.Filename))
			return
		}

		result, err := h.store(r, file, header)
		file.Close()
		if err != nil {
			// Already-stored files stay; the client retries the rest.
			h.writeError(w, "UploadMultiple", err)
			return
		}
		results = append(results, result)
	}

	if err := httputil.WriteCreated(w, "Images uploaded successfully", results); err != nil {
		h.log.Error("failed to write created response", "handler", "UploadMultiple", "error", err)
	}
}

func (h *UploadHandler) store(r *http.Request, file multipart.File, header *multipart.FileHeader) (UploadResult, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return UploadResult{}, apperrors.InvalidInput("Unsupported image type: " + contentType)
	}

	key := "images/" + uuid.NewString() + ext
	url, err := h.storage.Put(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		h.log.Error("Failed to store uploaded image",
			"filename", header.Filename,
			"key", key,
			"error", err,
		)
		return UploadResult{}, apperrors.Internal("Failed to store image", err)
	}

	h.log.Info("Image uploaded",
		"key", key,
		"size", header.Size,
		"original", path.Base(strings.TrimSpace(header.Filename)),
	)

	return UploadResult{URL: url, PublicID: key}, nil
}

func (h *UploadHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *UploadHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/upload", h.Upload)
	router.POST("/api/upload/multiple", h.UploadMultiple)
}

package upload_api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"evenza/internal/config"
	"evenza/internal/logger"
	"evenza/internal/utils"
)

// allowedTypes maps accepted MIME types to the stored extension. Proof
// uploads are images or PDFs; everything else is rejected up front.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type Handler struct {
	Upload config.UploadConfig
	Public string
	Logger *logger.Logger
}

func NewHandler(upload config.UploadConfig, publicURL string, log *logger.Logger) *Handler {
	return &Handler{
		Upload: upload,
		Public: publicURL,
		Logger: log,
	}
}

// UploadFile accepts one multipart file under the "file" field, sniffs
// its type, stores it under a generated name and returns the public URL.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Upload.MaxSizeBytes)
	if err := r.ParseMultipartForm(h.Upload.MaxSizeBytes); err != nil {
		utils.WriteJSON(w, http.StatusRequestEntityTooLarge, utils.ErrorResponse("Upload failed", "file too large"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Upload failed", "missing file field"))
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		h.Logger.Error("UPLOAD", fmt.Sprintf("Failed to read upload: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Upload failed", "internal error"))
		return
	}

	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedTypes[contentType]
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Upload failed", fmt.Sprintf("unsupported file type %s", contentType)))
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.Logger.Error("UPLOAD", fmt.Sprintf("Failed to rewind upload: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Upload failed", "internal error"))
		return
	}

	if err := os.MkdirAll(h.Upload.Dir, 0o755); err != nil {
		h.Logger.Error("UPLOAD", fmt.Sprintf("Failed to create upload dir: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Upload failed", "internal error"))
		return
	}

	name := utils.GenerateUploadName(ext)
	path := filepath.Join(h.Upload.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		h.Logger.Error("UPLOAD", fmt.Sprintf("Failed to create upload file: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Upload failed", "internal error"))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.Logger.Error("UPLOAD", fmt.Sprintf("Failed to store upload: %v", err))
		os.Remove(path)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Upload failed", "internal error"))
		return
	}

	url := fmt.Sprintf("%s/uploads/%s", h.Public, name)
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("File uploaded", map[string]string{"url": url}))
}

// ServeFile streams a stored upload back. The name comes from our own
// generator so path traversal is cut off with a base check.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.URL.Path)
	http.ServeFile(w, r, filepath.Join(h.Upload.Dir, name))
}

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	uploadDir = "./uploads" // Local directory for progress photos
)

// UploadFileLocal stores an uploaded photo on the local filesystem and
// returns its URL. Used in development instead of GCS.
func UploadFileLocal(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create upload directory: "+err.Error())
		return
	}

	// Parse the multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	// Timestamp prefix avoids collisions between tailors uploading
	// photos with the same camera filename.
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("%s-%s", timestamp, header.Filename)
	path := filepath.Join(uploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create file: "+err.Error())
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save file: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":      fmt.Sprintf("/uploads/%s", filename),
		"filename": filename,
	})
}

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// UploadFileGCS streams an uploaded photo into the configured Google
// Cloud Storage bucket and returns its public URL.
func UploadFileGCS(w http.ResponseWriter, r *http.Request) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		writeError(w, http.StatusInternalServerError, "GCS_BUCKET not configured")
		return
	}

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

	ctx := r.Context()
	client, err := storage.NewClient(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create storage client: "+err.Error())
		return
	}
	defer client.Close()

	objectName := fmt.Sprintf("uploads/%s-%s", time.Now().Format("20060102-150405"), header.Filename)
	obj := client.Bucket(bucketName).Object(objectName)

	wc := obj.NewWriter(ctx)
	wc.ContentType = header.Header.Get("Content-Type")
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		writeError(w, http.StatusInternalServerError, "failed to upload file: "+err.Error())
		return
	}
	if err := wc.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to finalize upload: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":      fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName),
		"filename": header.Filename,
	})
}

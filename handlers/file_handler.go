package handlers

import (
	"net/http"
	"os"
)

// UploadFileHandler routes to the appropriate upload handler based on
// environment: Google Cloud Storage in production, local disk in dev.
func UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != "" // Cloud Run indicator

	if useGCS {
		UploadFileGCS(w, r)
	} else {
		UploadFileLocal(w, r)
	}
}

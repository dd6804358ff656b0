// handlers/upload_handler.go
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ali-alhashim/next-it/config"
	"github.com/ali-alhashim/next-it/utils"
)

var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ServeUpload serves a stored photo: GET /uploads/{photoName}
func ServeUpload(w http.ResponseWriter, r *http.Request) {
	photoName := mux.Vars(r)["photoName"]

	// Serve only plain file names inside the uploads dir.
	if photoName == "" || photoName != filepath.Base(photoName) || strings.HasPrefix(photoName, ".") {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid photo name")
		return
	}

	path := filepath.Join(config.UploadsDir, photoName)
	data, err := os.ReadFile(path)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Image not found")
		return
	}

	contentType := photoContentTypes[strings.ToLower(filepath.Ext(photoName))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+photoName+`"`)
	w.Write(data)
}

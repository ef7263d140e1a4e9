package httpapi

import (
	"net/http"

	"storycat.app/internal/audit"
)

// handleAssetUpload accepts one multipart file field named "file" and stores
// it in the bucket. The public URL comes back for use as a design asset.
func (a *API) handleAssetUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := currentProfile(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	key, err := a.bucket.Save(header.Filename, file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "upload failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "assets.upload", map[string]any{
		"key":      key,
		"filename": header.Filename,
		"size":     header.Size,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"key": key,
		"url": a.bucket.PublicURL(key),
	})
}

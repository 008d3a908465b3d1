package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Niraeuru/ClassroomConnect/internal/extract"
	"github.com/Niraeuru/ClassroomConnect/internal/generate"
	"github.com/Niraeuru/ClassroomConnect/internal/storage"
)

// POST /generate (multipart: file=<doc>, mcq_count, tf_count, text_count)
// Extracts text from the upload and returns question drafts. The raw upload
// is archived to the blob store so the authored quiz can cite its source.
func GenerateHandler(svc *generate.Service, bs storage.BlobStore, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		mcqCount := parseIntDefault(r.FormValue("mcq_count"), 0)
		tfCount := parseIntDefault(r.FormValue("tf_count"), 0)
		textCount := parseIntDefault(r.FormValue("text_count"), 5)

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		drafts, err := svc.FromDocument(r.Context(), hdr.Filename, data, mcqCount, tfCount, textCount)
		if err != nil {
			switch {
			case errors.Is(err, extract.ErrUnsupportedType),
				errors.Is(err, extract.ErrUnreadable),
				errors.Is(err, extract.ErrInsufficientText):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		sourceKey := ""
		if bs != nil {
			key := "uploads/" + uuid.NewString() + strings.ToLower(filepath.Ext(hdr.Filename))
			if k, perr := bs.Put(key, bytes.NewReader(data)); perr == nil {
				sourceKey = k
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"drafts":     drafts,
			"source_key": sourceKey,
		})
	}
}

// GET /uploads/* streams an archived source document back by the source_key
// a generation run handed out.
func DownloadUploadHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, err := bs.Get("uploads/" + chi.URLParam(r, "*"))
		if err != nil {
			http.Error(w, "upload not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}

package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/middleware"
	"mediation-cms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	r.Route("/api/media", func(mr chi.Router) {
		mr.Get("/", listMediaHandler(svc))
		mr.Post("/", uploadMediaHandler(svc, log))
		mr.Get("/{mediaID}", getMediaHandler(svc))
		mr.Get("/{mediaID}/file", mediaFileHandler(svc, log))
		mr.Patch("/{mediaID}", updateMediaHandler(svc))
		mr.Delete("/{mediaID}", deleteMediaHandler(svc))
	})
}

type mediaResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Alt         string    `json:"alt"`
	URL         string    `json:"url"`
	StorageKey  string    `json:"storageKey,omitempty"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type updateMediaRequest struct {
	Alt string `json:"alt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// uploadMediaHandler godoc
// @Summary Subir archivo
// @Description Solo staff. multipart/form-data con `file` y `alt` opcional. Tipos: jpeg, png, gif, webp, pdf. Máximo 10MB.
// @Tags media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Archivo"
// @Param alt formData string false "Texto alternativo"
// @Success 201 {object} mediaResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 413 {object} messageResponse
// @Failure 415 {object} messageResponse
// @Router /api/media [post]
func uploadMediaHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		// chequeo temprano para no leer el cuerpo de quien no puede subir
		if access.Media.Decide(access.OpCreate, req).Denied() {
			writeServiceError(w, access.DenialError(req))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+(1<<20))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeServiceError(w, ErrTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		m, err := svc.Upload(r.Context(), req, UploadInput{
			Filename: header.Filename,
			Alt:      r.FormValue("alt"),
			Body:     file,
		})
		if err != nil {
			if !isClientError(err) {
				log.Error("media upload failed", map[string]any{"error": err})
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMediaResponse(m))
	}
}

// listMediaHandler godoc
// @Summary Listar archivos
// @Tags media
// @Produce json
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} mediaResponse
// @Router /api/media [get]
func listMediaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.List(r.Context(), middleware.RequesterFrom(r.Context()), limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]mediaResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMediaResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMediaHandler godoc
// @Summary Metadata de un archivo
// @Tags media
// @Produce json
// @Param mediaID path string true "ID"
// @Success 200 {object} mediaResponse
// @Failure 404 {object} messageResponse
// @Router /api/media/{mediaID} [get]
func getMediaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.Get(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "mediaID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMediaResponse(m))
	}
}

// mediaFileHandler godoc
// @Summary Descargar archivo
// @Tags media
// @Produce octet-stream
// @Param mediaID path string true "ID"
// @Success 200 {file} file
// @Failure 404 {object} messageResponse
// @Router /api/media/{mediaID}/file [get]
func mediaFileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, m, err := svc.Open(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "mediaID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", m.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(m.Size, 10))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			log.Warn("media stream interrupted", map[string]any{"error": err, "media_id": m.ID})
		}
	}
}

// updateMediaHandler godoc
// @Summary Editar texto alternativo
// @Tags media
// @Accept json
// @Produce json
// @Param mediaID path string true "ID"
// @Param payload body updateMediaRequest true "alt"
// @Success 200 {object} mediaResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/media/{mediaID} [patch]
func updateMediaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		m, err := svc.UpdateAlt(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "mediaID"), body.Alt)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMediaResponse(m))
	}
}

// deleteMediaHandler godoc
// @Summary Borrar archivo
// @Description Solo admin. Borra metadata y contenido.
// @Tags media
// @Param mediaID path string true "ID"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/media/{mediaID} [delete]
func deleteMediaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "mediaID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toMediaResponse(m Media) mediaResponse {
	return mediaResponse{
		ID:          m.ID,
		Filename:    m.Filename,
		ContentType: m.ContentType,
		Size:        m.Size,
		Alt:         m.Alt,
		URL:         "/api/media/" + m.ID + "/file",
		StorageKey:  m.StorageKey,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrUnsupported) ||
		errors.Is(err, access.ErrUnauthorized) ||
		errors.Is(err, access.ErrForbidden)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrUnsupported):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, access.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, access.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "media not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

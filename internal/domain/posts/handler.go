package posts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/posts", func(pr chi.Router) {
		pr.Get("/", listPostsHandler(svc))
		pr.Post("/", createPostHandler(svc))
		pr.Get("/slug/{slug}", getPostBySlugHandler(svc))
		pr.Get("/{postID}", getPostHandler(svc))
		pr.Patch("/{postID}", updatePostHandler(svc))
		pr.Delete("/{postID}", deletePostHandler(svc))
	})
}

// postRequest se usa para crear (todos los campos) y para PATCH (solo los presentes).
type postRequest struct {
	Title        *string   `json:"title"`
	Slug         *string   `json:"slug"`
	Excerpt      *string   `json:"excerpt"`
	Body         *string   `json:"body"`
	Status       *Status   `json:"status" enums:"draft,published"`
	Authors      *[]string `json:"authors"`
	CoverMediaID *string   `json:"coverMediaId"`
}

type postResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt"`
	Body         string     `json:"body"`
	Status       Status     `json:"status"`
	Authors      []string   `json:"authors"`
	CoverMediaID string     `json:"coverMediaId,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// listPostsHandler godoc
// @Summary Listar posts
// @Description Anónimos ven solo publicados; autores ven además sus borradores; staff ve todo.
// @Tags posts
// @Produce json
// @Param status query string false "draft | published"
// @Param author query string false "ID de autor"
// @Param limit query int false "Máximo (1-100). Por defecto 20"
// @Success 200 {array} postResponse
// @Failure 400 {object} messageResponse
// @Router /api/posts [get]
func listPostsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))

		items, err := svc.List(r.Context(), req, ListFilter{
			Status: Status(strings.TrimSpace(q.Get("status"))),
			Author: q.Get("author"),
			Limit:  limit,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]postResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPostResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createPostHandler godoc
// @Summary Crear post
// @Description Solo staff (admin/coordinator). Si no se envía slug se deriva del título; si no se envían autores, el autor es el requester.
// @Tags posts
// @Accept json
// @Produce json
// @Param payload body postRequest true "Post"
// @Success 201 {object} postResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/posts [post]
func createPostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body postRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := CreateInput{
			Title:        deref(body.Title),
			Slug:         deref(body.Slug),
			Excerpt:      deref(body.Excerpt),
			Body:         deref(body.Body),
			CoverMediaID: deref(body.CoverMediaID),
		}
		if body.Status != nil {
			in.Status = *body.Status
		}
		if body.Authors != nil {
			in.Authors = *body.Authors
		}

		p, err := svc.Create(r.Context(), req, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPostResponse(p))
	}
}

// getPostHandler godoc
// @Summary Obtener post por ID
// @Tags posts
// @Produce json
// @Param postID path string true "ID del post"
// @Success 200 {object} postResponse
// @Failure 404 {object} messageResponse
// @Router /api/posts/{postID} [get]
func getPostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "postID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponse(p))
	}
}

// getPostBySlugHandler godoc
// @Summary Obtener post por slug
// @Tags posts
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} postResponse
// @Failure 404 {object} messageResponse
// @Router /api/posts/slug/{slug} [get]
func getPostBySlugHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetBySlug(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "slug"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponse(p))
	}
}

// updatePostHandler godoc
// @Summary Editar post
// @Description Staff o autores del post. Solo se modifican los campos presentes.
// @Tags posts
// @Accept json
// @Produce json
// @Param postID path string true "ID del post"
// @Param payload body postRequest true "Campos a modificar"
// @Success 200 {object} postResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/posts/{postID} [patch]
func updatePostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body postRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Update(r.Context(), req, chi.URLParam(r, "postID"), UpdateInput{
			Title:        body.Title,
			Slug:         body.Slug,
			Excerpt:      body.Excerpt,
			Body:         body.Body,
			Status:       body.Status,
			Authors:      body.Authors,
			CoverMediaID: body.CoverMediaID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponse(p))
	}
}

// deletePostHandler godoc
// @Summary Borrar post
// @Tags posts
// @Param postID path string true "ID del post"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/posts/{postID} [delete]
func deletePostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "postID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toPostResponse(p Post) postResponse {
	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	return postResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Excerpt:      p.Excerpt,
		Body:         p.Body,
		Status:       p.Status,
		Authors:      authors,
		CoverMediaID: p.CoverMediaID,
		PublishedAt:  p.PublishedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, access.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
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

package events

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
	r.Route("/api/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listEventsHandler(svc))
		er.Get("/slug/{slug}", getEventBySlugHandler(svc))
		er.Get("/{eventID}", getEventHandler(svc))
		er.Patch("/{eventID}", updateEventHandler(svc))
		er.Delete("/{eventID}", deleteEventHandler(svc))

		// Cancelar (no borra): staff o hosts del evento
		er.Post("/{eventID}/cancel", cancelEventHandler(svc))
	})
}

// createEventRequest es el cuerpo para crear un evento.
type createEventRequest struct {
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	StartsAt        string      `json:"startsAt"`         // RFC3339
	EndsAt          string      `json:"endsAt,omitempty"` // RFC3339, opcional
	Format          Format      `json:"format" enums:"in_person,online,hybrid"`
	Location        string      `json:"location"`
	RegistrationURL string      `json:"registrationUrl"`
	Hosts           []string    `json:"hosts"`
	Status          EventStatus `json:"status" enums:"draft,published,cancelled"`
}

// updateEventRequest: solo se modifican los campos presentes.
type updateEventRequest struct {
	Title           *string      `json:"title"`
	Description     *string      `json:"description"`
	StartsAt        *string      `json:"startsAt"`
	EndsAt          *string      `json:"endsAt"`
	Format          *Format      `json:"format"`
	Location        *string      `json:"location"`
	RegistrationURL *string      `json:"registrationUrl"`
	Hosts           *[]string    `json:"hosts"`
	Status          *EventStatus `json:"status"`
}

// eventResponse representa un evento devuelto por la API.
type eventResponse struct {
	ID              string      `json:"id"`
	Slug            string      `json:"slug"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	StartsAt        time.Time   `json:"startsAt"`
	EndsAt          *time.Time  `json:"endsAt,omitempty"`
	Format          Format      `json:"format"`
	Location        string      `json:"location"`
	RegistrationURL string      `json:"registrationUrl,omitempty"`
	Hosts           []string    `json:"hosts"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Solo staff (admin/coordinator). Si no se envían hosts, el host es el requester. Autenticación: cookie `token`, `Authorization: Bearer <token>` o `X-Debug-User-ID` (dev).
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createEventRequest true "Datos del evento; startsAt en formato RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {object} messageResponse "invalid json / startsAt inválido / reglas de negocio"
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startsAt must be RFC3339")
			return
		}
		endsAt, err := parseOptionalTime(body.EndsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endsAt must be RFC3339")
			return
		}

		e, err := svc.Create(r.Context(), req, CreateInput{
			Title:           body.Title,
			Slug:            body.Slug,
			Description:     body.Description,
			StartsAt:        startsAt,
			EndsAt:          endsAt,
			Format:          body.Format,
			Location:        body.Location,
			RegistrationURL: body.RegistrationURL,
			Hosts:           body.Hosts,
			Status:          body.Status,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listEventsHandler godoc
// @Summary Listar eventos
// @Description Anónimos ven solo publicados; hosts ven además los suyos; staff ve todo. Permite filtrar por estado, rango de fechas y texto.
// @Tags events
// @Produce json
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Param status query string false "Lista CSV de estados (ej: published,cancelled)"
// @Param from query string false "starts_at mínimo (RFC3339)"
// @Param to query string false "starts_at máximo (RFC3339)"
// @Param q query string false "Texto de búsqueda libre en título/descripción/lugar"
// @Success 200 {array} eventResponse
// @Failure 400 {object} messageResponse "Parámetros de filtro inválidos"
// @Failure 500 {object} messageResponse
// @Router /api/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		filter, err := parseListFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		items, err := svc.List(r.Context(), req, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getEventHandler godoc
// @Summary Obtener evento
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {object} messageResponse
// @Router /api/events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetByID(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// getEventBySlugHandler godoc
// @Summary Obtener evento por slug
// @Tags events
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} eventResponse
// @Failure 404 {object} messageResponse
// @Router /api/events/slug/{slug} [get]
func getEventBySlugHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetBySlug(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "slug"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// updateEventHandler godoc
// @Summary Editar evento
// @Description Staff o hosts del evento.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body updateEventRequest true "Campos a modificar"
// @Success 200 {object} eventResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/events/{eventID} [patch]
func updateEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body updateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := UpdateInput{
			Title:           body.Title,
			Description:     body.Description,
			Format:          body.Format,
			Location:        body.Location,
			RegistrationURL: body.RegistrationURL,
			Hosts:           body.Hosts,
			Status:          body.Status,
		}
		if body.StartsAt != nil {
			t, err := time.Parse(time.RFC3339, *body.StartsAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "startsAt must be RFC3339")
				return
			}
			in.StartsAt = &t
		}
		if body.EndsAt != nil {
			t, err := parseOptionalTime(*body.EndsAt)
			if err != nil || t == nil {
				writeError(w, http.StatusBadRequest, "endsAt must be RFC3339")
				return
			}
			in.EndsAt = t
		}

		e, err := svc.Update(r.Context(), req, chi.URLParam(r, "eventID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// cancelEventHandler godoc
// @Summary Cancelar un evento
// @Description Marca el evento como cancelado. No se borra. Staff o hosts del evento.
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/events/{eventID}/cancel [post]
func cancelEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := svc.Cancel(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(updated))
	}
}

// deleteEventHandler godoc
// @Summary Borrar evento
// @Tags events
// @Param eventID path string true "ID del evento"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/events/{eventID} [delete]
func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "eventID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// status=published,cancelled
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventStatus, 0, len(parts))
		for _, p := range parts {
			st := EventStatus(strings.TrimSpace(p))
			if st == "" {
				continue
			}
			out = append(out, st)
		}
		if len(out) > 0 {
			filter.Statuses = out
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func parseOptionalTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toEventResponse(e Event) eventResponse {
	hosts := e.Hosts
	if hosts == nil {
		hosts = []string{}
	}
	return eventResponse{
		ID:              e.ID,
		Slug:            e.Slug,
		Title:           e.Title,
		Description:     e.Description,
		StartsAt:        e.StartsAt,
		EndsAt:          e.EndsAt,
		Format:          e.Format,
		Location:        e.Location,
		RegistrationURL: e.RegistrationURL,
		Hosts:           hosts,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
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
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

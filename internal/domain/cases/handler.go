package cases

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
	r.Route("/api/cases", func(cr chi.Router) {
		cr.Get("/", listCasesHandler(svc))
		cr.Post("/", createCaseHandler(svc))
		cr.Get("/{caseID}", getCaseHandler(svc))
		cr.Patch("/{caseID}", updateCaseHandler(svc))
		cr.Delete("/{caseID}", deleteCaseHandler(svc))
	})
}

type createCaseRequest struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Mediators     []string `json:"mediators"`
	Participants  []string `json:"participants"`
	MediatorNotes string   `json:"mediatorNotes"`
	SubmissionID  string   `json:"submissionId"`
	SessionAt     string   `json:"sessionAt"` // RFC3339, opcional
}

type updateCaseRequest struct {
	Title         *string   `json:"title"`
	Summary       *string   `json:"summary"`
	Status        *Status   `json:"status" enums:"open,scheduled,resolved,closed"`
	Mediators     *[]string `json:"mediators"`
	Participants  *[]string `json:"participants"`
	MediatorNotes *string   `json:"mediatorNotes"`
	SessionAt     *string   `json:"sessionAt"`
}

// caseResponse: mediatorNotes se omite cuando el requester no puede leerlas.
type caseResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	Status        Status     `json:"status"`
	Mediators     []string   `json:"mediators"`
	Participants  []string   `json:"participants"`
	MediatorNotes *string    `json:"mediatorNotes,omitempty"`
	SubmissionID  string     `json:"submissionId,omitempty"`
	SessionAt     *time.Time `json:"sessionAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// listCasesHandler godoc
// @Summary Listar casos
// @Description Staff ve todos; mediadores y participantes solo los casos donde figuran.
// @Tags cases
// @Produce json
// @Param status query string false "open | scheduled | resolved | closed"
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} caseResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Router /api/cases [get]
func listCasesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		items, err := svc.List(r.Context(), req, ListFilter{
			Status: Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:  limit,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]caseResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCaseResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createCaseHandler godoc
// @Summary Abrir caso
// @Description Solo staff. Con sessionAt el caso nace como scheduled.
// @Tags cases
// @Accept json
// @Produce json
// @Param payload body createCaseRequest true "Caso"
// @Success 201 {object} caseResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Router /api/cases [post]
func createCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body createCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := CreateInput{
			Title:         body.Title,
			Summary:       body.Summary,
			Mediators:     body.Mediators,
			Participants:  body.Participants,
			MediatorNotes: body.MediatorNotes,
			SubmissionID:  body.SubmissionID,
		}
		if v := strings.TrimSpace(body.SessionAt); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "sessionAt must be RFC3339")
				return
			}
			in.SessionAt = &t
		}

		c, err := svc.Create(r.Context(), req, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCaseResponse(c))
	}
}

// getCaseHandler godoc
// @Summary Obtener caso
// @Tags cases
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {object} caseResponse
// @Failure 404 {object} messageResponse
// @Router /api/cases/{caseID} [get]
func getCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "caseID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

// updateCaseHandler godoc
// @Summary Editar caso
// @Description Staff o mediadores asignados. Reasignar mediadores/participantes es solo staff. Las notas del mediador las escriben staff o mediadores del caso (considerando la reasignación del mismo request).
// @Tags cases
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body updateCaseRequest true "Campos a modificar"
// @Success 200 {object} caseResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/cases/{caseID} [patch]
func updateCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body updateCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := UpdateInput{
			Title:         body.Title,
			Summary:       body.Summary,
			Status:        body.Status,
			Mediators:     body.Mediators,
			Participants:  body.Participants,
			MediatorNotes: body.MediatorNotes,
		}
		if body.SessionAt != nil {
			t, err := time.Parse(time.RFC3339, *body.SessionAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "sessionAt must be RFC3339")
				return
			}
			in.SessionAt = &t
		}

		c, err := svc.Update(r.Context(), req, chi.URLParam(r, "caseID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

// deleteCaseHandler godoc
// @Summary Borrar caso
// @Description Solo admin.
// @Tags cases
// @Param caseID path string true "ID del caso"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/cases/{caseID} [delete]
func deleteCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "caseID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toCaseResponse(c Case) caseResponse {
	out := caseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Summary:      c.Summary,
		Status:       c.Status,
		Mediators:    nonNil(c.Mediators),
		Participants: nonNil(c.Participants),
		SubmissionID: c.SubmissionID,
		SessionAt:    c.SessionAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if !c.IsRedacted(access.FieldMediatorNotes) {
		notes := c.MediatorNotes
		out.MediatorNotes = &notes
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
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
		writeError(w, http.StatusNotFound, "case not found")
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

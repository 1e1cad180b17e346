package submissions

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/middleware"
	"mediation-cms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	msgMissing      = "Missing serviceType or formData"
	msgSubmitFailed = "Failed to submit service request"

	maxBodyBytes = 1 << 20
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	r.Post("/api/submit-service-request", submitHandler(svc, log))

	r.Route("/api/submissions", func(sr chi.Router) {
		sr.Get("/", listSubmissionsHandler(svc))
		sr.Get("/{submissionID}", getSubmissionHandler(svc))
		sr.Patch("/{submissionID}/status", updateStatusHandler(svc))
		sr.Delete("/{submissionID}", deleteSubmissionHandler(svc))
	})
}

// submitRequest: formData se decodifica aparte para distinguir ausente/null/no-objeto.
type submitRequest struct {
	ServiceType string          `json:"serviceType"`
	FormData    json.RawMessage `json:"formData" swaggertype:"object"`
}

type submitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId,omitempty"`
	Message      string `json:"message,omitempty"`
}

type submissionResponse struct {
	ID             string         `json:"id"`
	ServiceType    string         `json:"serviceType"`
	Submitter      Submitter      `json:"submitter"`
	Details        map[string]any `json:"details"`
	Status         Status         `json:"status"`
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type updateStatusRequest struct {
	Status Status `json:"status" enums:"new,in_review,contacted,closed"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// submitHandler godoc
// @Summary Enviar solicitud de servicio
// @Description Endpoint público del wizard de intake. Solo valida presencia de serviceType y formData; mapea los campos planos al registro anidado y crea exactamente una solicitud. Con `Idempotency-Key` los reintentos devuelven la solicitud original.
// @Tags submissions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Clave para deduplicar reintentos"
// @Param payload body submitRequest true "serviceType + formData"
// @Success 200 {object} submitResponse
// @Failure 400 {object} submitResponse "Missing serviceType or formData"
// @Failure 409 {object} submitResponse "Submission already in progress"
// @Failure 500 {object} submitResponse "Failed to submit service request"
// @Router /api/submit-service-request [post]
func submitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var body submitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, submitResponse{Message: "Invalid request body"})
			return
		}

		formData, ok := decodeObject(body.FormData)
		if !ok || strings.TrimSpace(body.ServiceType) == "" {
			writeJSON(w, http.StatusBadRequest, submitResponse{Message: msgMissing})
			return
		}

		res, err := svc.Submit(r.Context(), middleware.RequesterFrom(r.Context()), SubmitInput{
			ServiceType:    body.ServiceType,
			FormData:       formData,
			IdempotencyKey: r.Header.Get(IdempotencyHeader),
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingInput):
				writeJSON(w, http.StatusBadRequest, submitResponse{Message: msgMissing})
			case errors.Is(err, ErrInvalidInput):
				writeJSON(w, http.StatusBadRequest, submitResponse{Message: "Invalid Idempotency-Key"})
			case errors.Is(err, ErrInProgress):
				writeJSON(w, http.StatusConflict, submitResponse{Message: "Submission already in progress"})
			default:
				log.Error("submit service request failed", map[string]any{
					"error":        err,
					"service_type": body.ServiceType,
					"request_id":   chimw.GetReqID(r.Context()),
				})
				writeJSON(w, http.StatusInternalServerError, submitResponse{Message: msgSubmitFailed})
			}
			return
		}

		if res.Replayed {
			w.Header().Set("Idempotent-Replayed", "true")
		}
		writeJSON(w, http.StatusOK, submitResponse{Success: true, SubmissionID: res.Submission.ID})
	}
}

// decodeObject: solo un objeto JSON cuenta como formData presente.
func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// listSubmissionsHandler godoc
// @Summary Listar solicitudes
// @Description Bandeja del staff (admin/coordinator).
// @Tags submissions
// @Produce json
// @Param status query string false "new | in_review | contacted | closed"
// @Param serviceType query string false "Tipo de servicio"
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} submissionResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Router /api/submissions [get]
func listSubmissionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))

		items, err := svc.List(r.Context(), middleware.RequesterFrom(r.Context()), ListFilter{
			Status:      Status(strings.TrimSpace(q.Get("status"))),
			ServiceType: q.Get("serviceType"),
			Limit:       limit,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]submissionResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toSubmissionResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getSubmissionHandler godoc
// @Summary Obtener solicitud
// @Tags submissions
// @Produce json
// @Param submissionID path string true "ID de la solicitud"
// @Success 200 {object} submissionResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/submissions/{submissionID} [get]
func getSubmissionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Get(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "submissionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubmissionResponse(s))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de una solicitud
// @Description new → in_review → contacted → closed, de a un paso; closed desde cualquier estado; repetir el estado actual no cambia nada.
// @Tags submissions
// @Accept json
// @Produce json
// @Param submissionID path string true "ID de la solicitud"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} submissionResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/submissions/{submissionID}/status [patch]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		s, err := svc.UpdateStatus(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "submissionID"), body.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubmissionResponse(s))
	}
}

// deleteSubmissionHandler godoc
// @Summary Borrar solicitud
// @Description Solo admin.
// @Tags submissions
// @Param submissionID path string true "ID de la solicitud"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/submissions/{submissionID} [delete]
func deleteSubmissionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.RequesterFrom(r.Context()), chi.URLParam(r, "submissionID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toSubmissionResponse(s Submission) submissionResponse {
	details := s.Details
	if details == nil {
		details = map[string]any{}
	}
	return submissionResponse{
		ID:             s.ID,
		ServiceType:    s.ServiceType,
		Submitter:      s.Submitter,
		Details:        details,
		Status:         s.Status,
		IdempotencyKey: s.IdempotencyKey,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
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
		writeError(w, http.StatusNotFound, "submission not found")
	case errors.Is(err, ErrBadState):
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

package intake

import (
	"context"
	"errors"
	"maps"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNotFinalStep = errors.New("submit is only allowed from the final step")
	ErrStepInvalid  = errors.New("current step has invalid fields")
	ErrInFlight     = errors.New("submission already in progress")
	ErrNoSubmitter  = errors.New("no submitter configured")
	ErrNotSubmitted = errors.New("nothing to acknowledge")
	ErrSubmitted    = errors.New("already submitted; acknowledge before editing")
)

type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Payload es lo que se manda al endpoint de persistencia.
type Payload struct {
	ServiceType    string
	FormData       map[string]any
	IdempotencyKey string
}

// Submitter transmite el formulario completo y devuelve el id del registro.
type Submitter interface {
	SubmitServiceRequest(ctx context.Context, p Payload) (string, error)
}

// Wizard guía un Form paso a paso. No es seguro para uso concurrente.
type Wizard struct {
	form      Form
	submitter Submitter

	step   int
	values map[string]string
	passed map[string]bool
	errs   map[string]string
	focus  string

	status       Status
	submissionID string
	message      string

	// se reusa entre reintentos hasta que el envío se confirma
	idemKey string
	newKey  func() string
}

func NewWizard(form Form, sub Submitter) *Wizard {
	w := &Wizard{
		form:      form,
		submitter: sub,
		newKey:    uuid.NewString,
	}
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.step = 0
	w.values = map[string]string{}
	w.passed = map[string]bool{}
	w.errs = map[string]string{}
	w.focus = ""
	w.status = StatusEditing
	w.submissionID = ""
	w.message = ""
	w.idemKey = ""
}

func (w *Wizard) Form() Form           { return w.form }
func (w *Wizard) Step() int            { return w.step }
func (w *Wizard) TotalSteps() int      { return len(w.form.Steps) }
func (w *Wizard) Status() Status       { return w.status }
func (w *Wizard) Focus() string        { return w.focus }
func (w *Wizard) Message() string      { return w.message }
func (w *Wizard) SubmissionID() string { return w.submissionID }

func (w *Wizard) IsFinalStep() bool { return w.step == w.lastStep() }

func (w *Wizard) CurrentStep() Step {
	if len(w.form.Steps) == 0 {
		return Step{}
	}
	return w.form.Steps[w.step]
}

func (w *Wizard) Value(field string) string { return w.values[field] }

func (w *Wizard) Values() map[string]string { return maps.Clone(w.values) }

// Errors solo contiene campos de pasos ya validados.
func (w *Wizard) Errors() map[string]string { return maps.Clone(w.errs) }

func (w *Wizard) Passed(field string) bool { return w.passed[field] }

// Set guarda el valor y limpia el estado de validación solo de ese campo.
// Tras un envío exitoso el formulario queda cerrado hasta Acknowledge.
func (w *Wizard) Set(field, value string) error {
	if w.status == StatusSucceeded {
		return ErrSubmitted
	}
	if _, _, ok := w.form.Field(field); !ok {
		return ErrUnknownField
	}
	w.values[field] = strings.TrimSpace(value)
	delete(w.passed, field)
	delete(w.errs, field)
	if w.focus == field {
		w.focus = ""
	}
	if w.status == StatusFailed {
		w.status = StatusEditing
	}
	return nil
}

// GoNext valida el paso actual y avanza si pasa. Devuelve si avanzó
// o si el paso es válido estando ya en el último.
func (w *Wizard) GoNext() bool {
	if !w.validateStep(w.step) {
		return false
	}
	if w.step < w.lastStep() {
		w.step++
	}
	return true
}

// GoBack retrocede sin validar (piso 0).
func (w *Wizard) GoBack() {
	if w.step > 0 {
		w.step--
	}
}

// Submit re-valida el último paso y envía todos los valores.
// Si falla conserva los datos para reintentar.
func (w *Wizard) Submit(ctx context.Context) error {
	if w.status == StatusSubmitting {
		return ErrInFlight
	}
	if w.status == StatusSucceeded {
		return ErrSubmitted
	}
	if !w.IsFinalStep() {
		return ErrNotFinalStep
	}
	if !w.validateStep(w.step) {
		return ErrStepInvalid
	}
	if w.submitter == nil {
		return ErrNoSubmitter
	}

	if w.idemKey == "" {
		w.idemKey = w.newKey()
	}

	formData := make(map[string]any, len(w.values))
	for k, v := range w.values {
		formData[k] = v
	}

	w.status = StatusSubmitting
	w.message = ""
	id, err := w.submitter.SubmitServiceRequest(ctx, Payload{
		ServiceType:    w.form.ServiceType,
		FormData:       formData,
		IdempotencyKey: w.idemKey,
	})
	if err != nil {
		w.status = StatusFailed
		w.message = err.Error()
		return err
	}

	w.status = StatusSucceeded
	w.submissionID = id
	w.message = "Thank you! Your request has been submitted."
	return nil
}

// Acknowledge cierra el mensaje de éxito y vuelve al paso 0 vacío.
func (w *Wizard) Acknowledge() error {
	if w.status != StatusSucceeded {
		return ErrNotSubmitted
	}
	w.reset()
	return nil
}

func (w *Wizard) lastStep() int {
	if n := len(w.form.Steps); n > 0 {
		return n - 1
	}
	return 0
}

// validateStep valida solo los campos del paso i, en orden declarado.
// El foco va al primer campo inválido.
func (w *Wizard) validateStep(i int) bool {
	if i < 0 || i >= len(w.form.Steps) {
		return false
	}

	ok := true
	firstInvalid := ""
	for _, f := range w.form.Steps[i].Fields {
		if msg := checkField(f, w.values[f.Name]); msg != "" {
			w.errs[f.Name] = msg
			w.passed[f.Name] = false
			if firstInvalid == "" {
				firstInvalid = f.Name
			}
			ok = false
			continue
		}
		delete(w.errs, f.Name)
		w.passed[f.Name] = true
	}
	w.focus = firstInvalid
	return ok
}

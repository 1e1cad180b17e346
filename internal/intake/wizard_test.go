package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls []Payload
	id    string
	err   error
}

func (f *fakeSubmitter) SubmitServiceRequest(_ context.Context, p Payload) (string, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func mediationForm(t *testing.T) Form {
	t.Helper()
	f, ok := Lookup("Mediation")
	require.True(t, ok)
	return f
}

var validMediation = map[string]string{
	"firstName":          "Jane",
	"lastName":           "Doe",
	"email":              "jane@example.com",
	"phone":              "555-123-4567",
	"streetAddress":      "1 Main St",
	"city":               "Springfield",
	"state":              "IL",
	"zipCode":            "62701",
	"disputeType":        "neighbor",
	"otherParty":         "John Roe",
	"disputeDescription": "Ongoing disagreement about a shared fence line.",
	"courtInvolvement":   "No",
	"preferredContact":   "email",
	"canLeaveVoicemail":  "Yes",
	"canText":            "No",
}

func fillStep(t *testing.T, w *Wizard) {
	t.Helper()
	for _, f := range w.CurrentStep().Fields {
		if v, ok := validMediation[f.Name]; ok {
			require.NoError(t, w.Set(f.Name, v))
		}
	}
}

func TestBuiltinFormsHaveFourSteps(t *testing.T) {
	forms := Forms()
	require.Len(t, forms, 2)
	for _, f := range forms {
		assert.Len(t, f.Steps, 4, f.Name)
		assert.NotEmpty(t, f.ServiceType)
	}
}

func TestGoNext_InvalidStepDoesNotAdvance(t *testing.T) {
	w := NewWizard(mediationForm(t), nil)

	require.NoError(t, w.Set("firstName", "Jane"))
	require.NoError(t, w.Set("email", "not-an-email"))

	assert.False(t, w.GoNext())
	assert.Equal(t, 0, w.Step())
	assert.Equal(t, "lastName", w.Focus(), "focus goes to the first invalid field in declared order")

	errs := w.Errors()
	assert.Contains(t, errs, "lastName")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "phone")
	assert.NotContains(t, errs, "firstName")
	assert.True(t, w.Passed("firstName"))
}

func TestGoNext_NeverValidatesUnvisitedSteps(t *testing.T) {
	w := NewWizard(mediationForm(t), nil)

	assert.False(t, w.GoNext())
	for name := range w.Errors() {
		_, step, ok := w.Form().Field(name)
		require.True(t, ok)
		assert.Equal(t, 0, step, "field %s belongs to an unvisited step", name)
	}
}

func TestGoBack_FloorsAtZero(t *testing.T) {
	w := NewWizard(mediationForm(t), nil)

	w.GoBack()
	w.GoBack()
	assert.Equal(t, 0, w.Step())

	fillStep(t, w)
	require.True(t, w.GoNext())
	assert.Equal(t, 1, w.Step())

	// retroceder no valida ni borra lo ya validado
	w.GoBack()
	assert.Equal(t, 0, w.Step())
	assert.True(t, w.Passed("email"))
	assert.Empty(t, w.Errors())
}

func TestGoNext_SaturatesAtFinalStep(t *testing.T) {
	w := NewWizard(mediationForm(t), nil)
	for i := 0; i < w.TotalSteps(); i++ {
		fillStep(t, w)
		require.True(t, w.GoNext())
	}
	assert.Equal(t, w.TotalSteps()-1, w.Step())
	assert.True(t, w.GoNext())
	assert.Equal(t, w.TotalSteps()-1, w.Step())
}

func TestSet_InvalidatesOnlyEditedField(t *testing.T) {
	w := NewWizard(mediationForm(t), nil)
	fillStep(t, w)
	require.True(t, w.GoNext())
	w.GoBack()

	require.NoError(t, w.Set("email", "other@example.com"))
	assert.False(t, w.Passed("email"))
	assert.True(t, w.Passed("firstName"))

	assert.ErrorIs(t, w.Set("nope", "x"), ErrUnknownField)
}

func TestSubmit_OnlyFromFinalStep(t *testing.T) {
	sub := &fakeSubmitter{id: "sub-1"}
	w := NewWizard(mediationForm(t), sub)

	assert.ErrorIs(t, w.Submit(context.Background()), ErrNotFinalStep)
	assert.Empty(t, sub.calls)
}

func walkToEnd(t *testing.T, w *Wizard) {
	t.Helper()
	for !w.IsFinalStep() {
		fillStep(t, w)
		require.True(t, w.GoNext())
	}
	fillStep(t, w)
}

func TestSubmit_SuccessThenAcknowledgeResets(t *testing.T) {
	sub := &fakeSubmitter{id: "sub-1"}
	w := NewWizard(mediationForm(t), sub)
	walkToEnd(t, w)

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StatusSucceeded, w.Status())
	assert.Equal(t, "sub-1", w.SubmissionID())
	assert.Equal(t, "Jane", w.Value("firstName"), "data kept while the success message renders")

	require.Len(t, sub.calls, 1)
	got := sub.calls[0]
	assert.Equal(t, "Mediation", got.ServiceType)
	assert.Equal(t, "62701", got.FormData["zipCode"])
	assert.NotEmpty(t, got.IdempotencyKey)

	require.NoError(t, w.Acknowledge())
	assert.Equal(t, 0, w.Step())
	assert.Equal(t, StatusEditing, w.Status())
	assert.Empty(t, w.Values())
}

func TestSubmit_SucceededIsClosedUntilAcknowledge(t *testing.T) {
	sub := &fakeSubmitter{id: "sub-1"}
	w := NewWizard(mediationForm(t), sub)
	walkToEnd(t, w)
	require.NoError(t, w.Submit(context.Background()))

	assert.ErrorIs(t, w.Set("firstName", "Janet"), ErrSubmitted)
	assert.Equal(t, "Jane", w.Value("firstName"))
	assert.ErrorIs(t, w.Submit(context.Background()), ErrSubmitted)
	require.Len(t, sub.calls, 1)

	// tras Acknowledge un envío nuevo lleva otra clave
	require.NoError(t, w.Acknowledge())
	walkToEnd(t, w)
	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, sub.calls, 2)
	assert.NotEqual(t, sub.calls[0].IdempotencyKey, sub.calls[1].IdempotencyKey)
}

func TestSubmit_FailurePreservesData(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("Failed to submit service request")}
	w := NewWizard(mediationForm(t), sub)
	walkToEnd(t, w)

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, w.Status())
	assert.Equal(t, "Failed to submit service request", w.Message())
	assert.Equal(t, w.TotalSteps()-1, w.Step())
	assert.Equal(t, validMediation["disputeDescription"], w.Value("disputeDescription"))
	assert.ErrorIs(t, w.Acknowledge(), ErrNotSubmitted)

	// el reintento reusa la misma idempotency key
	sub.err = nil
	sub.id = "sub-2"
	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, sub.calls, 2)
	assert.Equal(t, sub.calls[0].IdempotencyKey, sub.calls[1].IdempotencyKey)
}

func TestSubmit_RevalidatesFinalStep(t *testing.T) {
	sub := &fakeSubmitter{id: "sub-1"}
	w := NewWizard(mediationForm(t), sub)
	walkToEnd(t, w)
	require.NoError(t, w.Set("canText", "maybe"))

	assert.ErrorIs(t, w.Submit(context.Background()), ErrStepInvalid)
	assert.Equal(t, "canText", w.Focus())
	assert.Equal(t, "Choose one of: Yes, No", w.Errors()["canText"])
	assert.Empty(t, sub.calls)
}

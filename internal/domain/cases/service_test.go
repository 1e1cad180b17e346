package cases_test

import (
	"context"
	"testing"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/adapters/storage/memory"
	"mediation-cms/internal/domain/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin       = access.Requester{UserID: "admin-1", Role: access.RoleAdmin}
	coordinator = access.Requester{UserID: "coord-1", Role: access.RoleCoordinator}
	mediator    = access.Requester{UserID: "med-1", Role: access.RoleMediator}
	otherMed    = access.Requester{UserID: "med-2", Role: access.RoleMediator}
	participant = access.Requester{UserID: "part-1", Role: access.RoleParticipant}
)

func seedCase(t *testing.T, svc *cases.Service) cases.Case {
	t.Helper()
	c, err := svc.Create(context.Background(), coordinator, cases.CreateInput{
		Title:         "Neighbors / fence dispute",
		Mediators:     []string{mediator.UserID},
		Participants:  []string{participant.UserID},
		MediatorNotes: "Both parties prefer evening sessions.",
	})
	require.NoError(t, err)
	return c
}

func TestCreate_StaffOnly(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, mediator, cases.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Create(ctx, access.Anonymous(), cases.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, access.ErrUnauthorized)

	session := time.Date(2026, 12, 1, 17, 0, 0, 0, time.UTC)
	c, err := svc.Create(ctx, coordinator, cases.CreateInput{Title: "Scheduled", SessionAt: &session})
	require.NoError(t, err)
	assert.Equal(t, cases.StatusScheduled, c.Status)
}

func TestRead_OnlyAssigned(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()
	c := seedCase(t, svc)

	for _, r := range []access.Requester{admin, coordinator, mediator, participant} {
		got, err := svc.List(ctx, r, cases.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 1, "requester %s", r.UserID)
	}

	got, err := svc.List(ctx, otherMed, cases.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.Get(ctx, otherMed, c.ID)
	assert.ErrorIs(t, err, cases.ErrNotFound)

	_, err = svc.List(ctx, access.Anonymous(), cases.ListFilter{})
	assert.ErrorIs(t, err, access.ErrUnauthorized)
}

func TestMediatorNotes_HiddenFromParticipants(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()
	c := seedCase(t, svc)

	asMediator, err := svc.Get(ctx, mediator, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Both parties prefer evening sessions.", asMediator.MediatorNotes)
	assert.False(t, asMediator.IsRedacted(access.FieldMediatorNotes))

	asParticipant, err := svc.Get(ctx, participant, c.ID)
	require.NoError(t, err)
	assert.Empty(t, asParticipant.MediatorNotes)
	assert.True(t, asParticipant.IsRedacted(access.FieldMediatorNotes))

	// lo guardado no se altera por la vista redactada
	again, err := svc.Get(ctx, coordinator, c.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, again.MediatorNotes)
}

func TestUpdate_ParticipantCannotWrite(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()
	c := seedCase(t, svc)

	summary := "participant edit"
	_, err := svc.Update(ctx, participant, c.ID, cases.UpdateInput{Summary: &summary})
	assert.ErrorIs(t, err, access.ErrForbidden)

	notes := "updated by mediator"
	got, err := svc.Update(ctx, mediator, c.ID, cases.UpdateInput{MediatorNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, got.MediatorNotes)

	// reasignar es solo staff
	meds := []string{otherMed.UserID}
	_, err = svc.Update(ctx, mediator, c.ID, cases.UpdateInput{Mediators: &meds})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestUpdate_NotesUseEffectiveAssignment(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()
	c := seedCase(t, svc)

	// el coordinador reasigna y escribe notas en el mismo request
	meds := []string{otherMed.UserID}
	notes := "handover to med-2"
	got, err := svc.Update(ctx, coordinator, c.ID, cases.UpdateInput{Mediators: &meds, MediatorNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, meds, got.Mediators)

	// el mediador anterior ya no ve el caso
	_, err = svc.Get(ctx, mediator, c.ID)
	assert.ErrorIs(t, err, cases.ErrNotFound)

	got, err = svc.Get(ctx, otherMed, c.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.MediatorNotes)
}

func TestDelete_AdminOnly(t *testing.T) {
	svc := cases.NewService(memory.NewCaseRepo())
	ctx := context.Background()
	c := seedCase(t, svc)

	assert.ErrorIs(t, svc.Delete(ctx, coordinator, c.ID), access.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, c.ID))
}

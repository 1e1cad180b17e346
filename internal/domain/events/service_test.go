package events_test

import (
	"context"
	"testing"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/adapters/storage/memory"
	"mediation-cms/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = access.Requester{UserID: "admin-1", Role: access.RoleAdmin}
	host  = access.Requester{UserID: "med-1", Role: access.RoleMediator}
	other = access.Requester{UserID: "med-2", Role: access.RoleMediator}
)

func TestCreate_Validation(t *testing.T) {
	svc := events.NewService(memory.NewEventRepo())
	ctx := context.Background()
	start := time.Date(2026, 11, 5, 18, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	cases := []events.CreateInput{
		{Title: "", StartsAt: start},
		{Title: "No start"},
		{Title: "Ends before", StartsAt: start, EndsAt: &before},
		{Title: "Bad format", StartsAt: start, Format: "zoom"},
		{Title: "Bad url", StartsAt: start, RegistrationURL: "ftp://example.org"},
	}
	for i, in := range cases {
		_, err := svc.Create(ctx, admin, in)
		assert.ErrorIs(t, err, events.ErrInvalidInput, "case %d", i)
	}

	_, err := svc.Create(ctx, host, events.CreateInput{Title: "x", StartsAt: start})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestList_FiltersAndScope(t *testing.T) {
	svc := events.NewService(memory.NewEventRepo())
	ctx := context.Background()
	base := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)

	workshop, err := svc.Create(ctx, admin, events.CreateInput{
		Title:    "Conflict Coaching Workshop",
		StartsAt: base.Add(48 * time.Hour),
		Status:   events.EventStatusPublished,
		Location: "Community Library",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin, events.CreateInput{
		Title:    "Volunteer Mediator Training",
		StartsAt: base.Add(24 * time.Hour),
		Hosts:    []string{host.UserID},
	})
	require.NoError(t, err)

	anon, err := svc.List(ctx, access.Anonymous(), events.ListFilter{})
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, workshop.ID, anon[0].ID)

	mine, err := svc.List(ctx, host, events.ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Volunteer Mediator Training", mine[0].Title, "ordered by start asc")

	notMine, err := svc.List(ctx, other, events.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, notMine, 1)

	from := base.Add(36 * time.Hour)
	later, err := svc.List(ctx, admin, events.ListFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, workshop.ID, later[0].ID)

	q, err := svc.List(ctx, admin, events.ListFilter{Query: "library"})
	require.NoError(t, err)
	assert.Len(t, q, 1)

	to := base
	_, err = svc.List(ctx, admin, events.ListFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, events.ErrInvalidInput)
}

func TestCancel_HostCanCancel(t *testing.T) {
	svc := events.NewService(memory.NewEventRepo())
	ctx := context.Background()

	e, err := svc.Create(ctx, admin, events.CreateInput{
		Title:    "Neighborhood Dialogue",
		StartsAt: time.Now().Add(72 * time.Hour),
		Status:   events.EventStatusPublished,
		Hosts:    []string{host.UserID},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, other, e.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Cancel(ctx, access.Anonymous(), e.ID)
	assert.ErrorIs(t, err, access.ErrUnauthorized)

	cancelled, err := svc.Cancel(ctx, host, e.ID)
	require.NoError(t, err)
	assert.Equal(t, events.EventStatusCancelled, cancelled.Status)

	// cancelado ya no es público
	_, err = svc.GetBySlug(ctx, access.Anonymous(), e.Slug)
	assert.ErrorIs(t, err, events.ErrNotFound)

	upcoming, err := svc.Upcoming(ctx, access.Anonymous(), 10)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

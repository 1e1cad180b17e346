package posts_test

import (
	"context"
	"testing"

	"mediation-cms/internal/access"
	"mediation-cms/internal/adapters/storage/memory"
	"mediation-cms/internal/domain/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coordinator = access.Requester{UserID: "coord-1", Role: access.RoleCoordinator}
	author      = access.Requester{UserID: "med-1", Role: access.RoleMediator}
	stranger    = access.Requester{UserID: "med-2", Role: access.RoleMediator}
)

func seed(t *testing.T, svc *posts.Service) (draft, published posts.Post) {
	t.Helper()
	ctx := context.Background()

	draft, err := svc.Create(ctx, coordinator, posts.CreateInput{
		Title:   "Draft Thoughts on Dialogue",
		Authors: []string{author.UserID},
	})
	require.NoError(t, err)

	published, err = svc.Create(ctx, coordinator, posts.CreateInput{
		Title:  "Welcome to Our Center",
		Status: posts.StatusPublished,
	})
	require.NoError(t, err)
	return draft, published
}

func TestCreate(t *testing.T) {
	svc := posts.NewService(memory.NewPostRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, access.Anonymous(), posts.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, access.ErrUnauthorized)

	_, err = svc.Create(ctx, author, posts.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, access.ErrForbidden)

	p, err := svc.Create(ctx, coordinator, posts.CreateInput{Title: "Restorative Circles 101"})
	require.NoError(t, err)
	assert.Equal(t, "restorative-circles-101", p.Slug)
	assert.Equal(t, posts.StatusDraft, p.Status)
	assert.Equal(t, []string{coordinator.UserID}, p.Authors)
	assert.Nil(t, p.PublishedAt)

	_, err = svc.Create(ctx, coordinator, posts.CreateInput{Title: "Restorative circles 101!"})
	assert.ErrorIs(t, err, posts.ErrConflict)

	_, err = svc.Create(ctx, coordinator, posts.CreateInput{Title: "  "})
	assert.ErrorIs(t, err, posts.ErrInvalidInput)
}

func TestList_ScopedByReadPolicy(t *testing.T) {
	svc := posts.NewService(memory.NewPostRepo())
	ctx := context.Background()
	draft, published := seed(t, svc)

	anon, err := svc.List(ctx, access.Anonymous(), posts.ListFilter{})
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, published.ID, anon[0].ID)

	mine, err := svc.List(ctx, author, posts.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := svc.List(ctx, stranger, posts.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, other, 1)

	drafts, err := svc.List(ctx, coordinator, posts.ListFilter{Status: posts.StatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)

	_, err = svc.List(ctx, coordinator, posts.ListFilter{Status: "archived"})
	assert.ErrorIs(t, err, posts.ErrInvalidInput)
}

func TestGet_DraftHiddenFromPublic(t *testing.T) {
	svc := posts.NewService(memory.NewPostRepo())
	ctx := context.Background()
	draft, published := seed(t, svc)

	_, err := svc.GetBySlug(ctx, access.Anonymous(), draft.Slug)
	assert.ErrorIs(t, err, posts.ErrNotFound)

	got, err := svc.GetBySlug(ctx, access.Anonymous(), published.Slug)
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	_, err = svc.Get(ctx, author, draft.ID)
	assert.NoError(t, err)
}

func TestUpdate_AuthorsAndStaff(t *testing.T) {
	svc := posts.NewService(memory.NewPostRepo())
	ctx := context.Background()
	draft, published := seed(t, svc)

	title := "Edited by author"
	p, err := svc.Update(ctx, author, draft.ID, posts.UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, p.Title)

	// lo ve (publicado) pero no es autor
	_, err = svc.Update(ctx, stranger, published.ID, posts.UpdateInput{Title: &title})
	assert.ErrorIs(t, err, access.ErrForbidden)

	status := posts.StatusPublished
	p, err = svc.Update(ctx, coordinator, draft.ID, posts.UpdateInput{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	first := *p.PublishedAt

	p, err = svc.Update(ctx, coordinator, draft.ID, posts.UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, first, *p.PublishedAt, "republish keeps the original date")
}

func TestDelete_StaffOnly(t *testing.T) {
	svc := posts.NewService(memory.NewPostRepo())
	ctx := context.Background()
	draft, _ := seed(t, svc)

	assert.ErrorIs(t, svc.Delete(ctx, author, draft.ID), access.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, coordinator, draft.ID))

	_, err := svc.Get(ctx, coordinator, draft.ID)
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"mediation-cms/internal/access"
	blobmem "mediation-cms/internal/adapters/objectstore/memory"
	"mediation-cms/internal/adapters/storage/memory"
	"mediation-cms/internal/domain/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin       = access.Requester{UserID: "admin-1", Role: access.RoleAdmin}
	coordinator = access.Requester{UserID: "coord-1", Role: access.RoleCoordinator}
	mediator    = access.Requester{UserID: "med-1", Role: access.RoleMediator}
)

// pngBytes arranca con la firma PNG para que DetectContentType lo reconozca.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type brokenRepo struct {
	media.Repository
}

func (brokenRepo) Create(ctx context.Context, m media.Media) error {
	return errors.New("db down")
}

func TestUpload_AndRead(t *testing.T) {
	blobs := blobmem.NewStore()
	svc := media.NewService(memory.NewMediaRepo(), blobs, nil)
	ctx := context.Background()

	m, err := svc.Upload(ctx, coordinator, media.UploadInput{
		Filename: `C:\Users\me\Team Photo.PNG`,
		Alt:      "Volunteer mediators",
		Body:     bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "Team Photo.PNG", m.Filename)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, "media/"+m.ID+".png", m.StorageKey)
	assert.Equal(t, 1, blobs.Len())

	public, err := svc.Get(ctx, access.Anonymous(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, public.StorageKey, "storage key hidden from public")

	rc, _, err := svc.Open(ctx, access.Anonymous(), m.ID)
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, pngBytes, got)
}

func TestUpload_Rejections(t *testing.T) {
	svc := media.NewService(memory.NewMediaRepo(), blobmem.NewStore(), nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, mediator, media.UploadInput{Filename: "a.png", Body: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Upload(ctx, coordinator, media.UploadInput{Filename: "a.sh", Body: bytes.NewReader([]byte("#!/bin/sh\necho hi\n"))})
	assert.ErrorIs(t, err, media.ErrUnsupported)

	_, err = svc.Upload(ctx, coordinator, media.UploadInput{Filename: "empty.png", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, media.ErrInvalidInput)

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, media.MaxUploadBytes)...)
	_, err = svc.Upload(ctx, coordinator, media.UploadInput{Filename: "big.png", Body: bytes.NewReader(big)})
	assert.ErrorIs(t, err, media.ErrTooLarge)
}

func TestUpload_MetadataFailureRemovesBlob(t *testing.T) {
	blobs := blobmem.NewStore()
	svc := media.NewService(brokenRepo{memory.NewMediaRepo()}, blobs, nil)

	_, err := svc.Upload(context.Background(), coordinator, media.UploadInput{Filename: "a.png", Body: bytes.NewReader(pngBytes)})
	require.Error(t, err)
	assert.Equal(t, 0, blobs.Len(), "no orphaned upload")
}

func TestDelete_AdminOnly(t *testing.T) {
	blobs := blobmem.NewStore()
	svc := media.NewService(memory.NewMediaRepo(), blobs, nil)
	ctx := context.Background()

	m, err := svc.Upload(ctx, coordinator, media.UploadInput{Filename: "a.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, coordinator, m.ID), access.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, m.ID))
	assert.Equal(t, 0, blobs.Len())

	_, err = svc.Get(ctx, admin, m.ID)
	assert.ErrorIs(t, err, media.ErrNotFound)
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/migrations"
	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/client/objecturl"
	"github.com/dmitrijs2005/jara/internal/client/repositories/videos"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/dbx"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ videos.MemoryRepository }

func (*failingRepo) Create(context.Context, *models.VideoRecord) error { return errors.New("boom") }

func newMedia(t *testing.T) (*mediaService, *objecturl.Registry) {
	t.Helper()
	reg := objecturl.NewRegistry("http://localhost")
	svc := NewMediaService(videos.NewMemoryRepository(), reg, logging.Discard()).(*mediaService)
	return svc, reg
}

func TestMediaSave_DefaultsAndSize(t *testing.T) {
	svc, _ := newMedia(t)
	ctx := context.Background()

	id, err := svc.Save(ctx, SaveParams{Title: "clip", Video: models.Blob{Data: []byte("12345")}})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, models.DefaultVideoType, list[0].VideoType)
	assert.Equal(t, int64(5), list[0].Size)
	assert.False(t, list[0].HasImage)
	assert.Nil(t, list[0].Description)
}

func TestMediaSave_UniqueIDs(t *testing.T) {
	svc, _ := newMedia(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := svc.Save(ctx, SaveParams{Title: "same", Video: models.Blob{Type: "video/webm"}})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestMediaList_NewestFirst(t *testing.T) {
	svc, _ := newMedia(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		id, err := svc.Save(ctx, SaveParams{Title: "v", Video: models.Blob{Data: []byte{byte(i)}}})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestMediaGetURLs_NotFound(t *testing.T) {
	svc, _ := newMedia(t)

	_, err := svc.GetURLs(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMediaGetURLs_NoImageAndRevoke(t *testing.T) {
	svc, reg := newMedia(t)
	ctx := context.Background()

	id, err := svc.Save(ctx, SaveParams{Title: "v", Video: models.Blob{Type: "video/mp4", Data: []byte("data")}})
	require.NoError(t, err)

	urls, err := svc.GetURLs(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, urls.VideoURL)
	assert.Nil(t, urls.ImageURL)

	b, ok := reg.Resolve(urls.VideoURL)
	require.True(t, ok)
	assert.Equal(t, []byte("data"), b.Data)

	svc.Revoke(urls)
	svc.Revoke(urls)
	svc.Revoke(nil)
	_, ok = reg.Resolve(urls.VideoURL)
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestMediaGetURLs_WithImage(t *testing.T) {
	svc, reg := newMedia(t)
	ctx := context.Background()
	desc := "about"

	id, err := svc.Save(ctx, SaveParams{
		Title:       "v",
		Description: &desc,
		Video:       models.Blob{Data: []byte("v")},
		Image:       &models.Blob{Type: "image/png", Data: []byte("i")},
	})
	require.NoError(t, err)

	urls, err := svc.GetURLs(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, urls.ImageURL)
	assert.NotEqual(t, urls.VideoURL, *urls.ImageURL)

	img, ok := reg.Resolve(*urls.ImageURL)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.Type)

	// every call derives fresh URLs
	again, err := svc.GetURLs(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, urls.VideoURL, again.VideoURL)
	assert.Equal(t, 4, reg.Len())
}

func TestMediaGetURLs_EmptyImageOnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, dbx.SQLiteDSN(filepath.Join(t.TempDir(), "jara.db")), migrations.Migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := objecturl.NewRegistry("http://localhost")
	svc := NewMediaService(videos.NewSQLiteRepository(db), reg, logging.Discard())

	id, err := svc.Save(ctx, SaveParams{
		Title: "v",
		Video: models.Blob{Data: []byte("v")},
		Image: &models.Blob{Type: "image/png"},
	})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].HasImage)

	urls, err := svc.GetURLs(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, urls.ImageURL)
	img, ok := reg.Resolve(*urls.ImageURL)
	require.True(t, ok)
	assert.Empty(t, img.Data)
}

func TestMediaSave_RepositoryError(t *testing.T) {
	svc := NewMediaService(&failingRepo{}, objecturl.NewRegistry("x"), logging.Discard())

	_, err := svc.Save(context.Background(), SaveParams{Title: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save video")
}

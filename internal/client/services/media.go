package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/client/objecturl"
	"github.com/dmitrijs2005/jara/internal/client/repositories/videos"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/google/uuid"
)

// SaveParams describes one upload. Description and Image are optional.
type SaveParams struct {
	Title       string
	Description *string
	Video       models.Blob
	Image       *models.Blob
}

// MediaService is the local video library.
//
// Records are append-only: there is no update or delete. URLs returned by
// GetURLs live until Revoke or process exit.
type MediaService interface {
	Save(ctx context.Context, p SaveParams) (string, error)
	List(ctx context.Context) ([]models.VideoSummary, error)
	GetURLs(ctx context.Context, id string) (*models.VideoURLs, error)
	Revoke(urls *models.VideoURLs)
}

type mediaService struct {
	repo     videos.Repository
	registry *objecturl.Registry
	now      func() time.Time
	logger   logging.Logger
}

func NewMediaService(repo videos.Repository, registry *objecturl.Registry, logger logging.Logger) MediaService {
	return &mediaService{
		repo:     repo,
		registry: registry,
		now:      time.Now,
		logger:   logger.With("module", "media"),
	}
}

func (s *mediaService) Save(ctx context.Context, p SaveParams) (string, error) {
	video := p.Video
	if strings.TrimSpace(video.Type) == "" {
		video.Type = models.DefaultVideoType
	}
	if video.Data == nil {
		video.Data = []byte{}
	}

	var image *models.Blob
	if p.Image != nil {
		img := *p.Image
		if img.Data == nil {
			img.Data = []byte{}
		}
		image = &img
	}

	rec := &models.VideoRecord{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   s.now(),
		Video:       video,
		Image:       image,
		Size:        int64(len(video.Data)),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}

	s.logger.Info(ctx, "video saved", "id", rec.ID, "size", rec.Size, "has_image", image != nil)
	return rec.ID, nil
}

func (s *mediaService) List(ctx context.Context) ([]models.VideoSummary, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return items, nil
}

func (s *mediaService) GetURLs(ctx context.Context, id string) (*models.VideoURLs, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	urls := &models.VideoURLs{VideoURL: s.registry.Create(rec.Video)}
	if rec.Image != nil {
		u := s.registry.Create(*rec.Image)
		urls.ImageURL = &u
	}
	return urls, nil
}

// Revoke releases both URLs. A nil value or already released URLs are
// ignored.
func (s *mediaService) Revoke(urls *models.VideoURLs) {
	if urls == nil {
		return
	}
	s.registry.Revoke(urls.VideoURL)
	if urls.ImageURL != nil {
		s.registry.Revoke(*urls.ImageURL)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/client/services"
	"github.com/dmitrijs2005/jara/internal/client/session"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/filex"
)

// Upload limits, checked before anything is stored.
const (
	MaxVideoSize = 100 << 20
	MaxImageSize = 5 << 20
)

// uploadPath is the protected view the media commands stand for.
const uploadPath = "/upload"

var (
	errNoVideo    = errors.New("please select a video file")
	errNoTitle    = errors.New("title is required")
	errUnknownURL = errors.New("unknown object URL")
)

// requireAuth applies the session gate for dest.
func (a *App) requireAuth(dest string) error {
	g := a.session.Gate(dest)
	switch g.Action {
	case session.GateRender:
		return nil
	case session.GateWait:
		return errors.New("session is still loading, try again")
	default:
		return fmt.Errorf("%w: sign in first (%s)", common.ErrUnauthorized, g.RedirectURL)
	}
}

// Upload prompts for the upload form and stores the video locally.
func (a *App) Upload(ctx context.Context) error {
	if err := a.requireAuth(uploadPath); err != nil {
		return err
	}

	videoPath, err := GetSimpleText(a.reader, fmt.Sprintf("Video file (up to %s)", humanize.IBytes(MaxVideoSize)), a.out)
	if err != nil {
		return err
	}
	imagePath, err := GetSimpleText(a.reader, fmt.Sprintf("Cover image, optional (up to %s)", humanize.IBytes(MaxImageSize)), a.out)
	if err != nil {
		return err
	}
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description, optional", a.out)
	if err != nil {
		return err
	}

	if videoPath == "" {
		return errNoVideo
	}
	video, err := readBlob(videoPath, MaxVideoSize, "Video")
	if err != nil {
		return err
	}

	var image *models.Blob
	if imagePath != "" {
		img, err := readBlob(imagePath, MaxImageSize, "Image")
		if err != nil {
			return err
		}
		image = &img
	}

	if title == "" {
		return errNoTitle
	}

	p := services.SaveParams{Title: title, Video: video, Image: image}
	if description != "" {
		p.Description = &description
	}

	id, err := a.media.Save(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Video saved locally: %s (%s)\n", id, humanize.IBytes(uint64(len(video.Data))))
	return nil
}

// readBlob loads path, refusing files above limit.
func readBlob(path string, limit int64, kind string) (models.Blob, error) {
	data, err := filex.ReadFileLimit(path, limit)
	if errors.Is(err, filex.ErrTooLarge) {
		return models.Blob{}, fmt.Errorf("%s must be <= %s", kind, humanize.IBytes(uint64(limit)))
	}
	if err != nil {
		return models.Blob{}, err
	}
	return models.Blob{Type: contentType(path, data), Data: data}, nil
}

// videoTypes covers the upload formats the system MIME table may lack.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// contentType guesses from the extension, then from the content. Unknown
// content yields "" so the store default applies.
func contentType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mt
		}
		return t
	}
	t := http.DetectContentType(data)
	if strings.HasPrefix(t, "application/octet-stream") || strings.HasPrefix(t, "text/plain") {
		return ""
	}
	mt, _, _ := mime.ParseMediaType(t)
	return mt
}

// List prints the stored videos, newest first.
func (a *App) List(ctx context.Context) error {
	if err := a.requireAuth(uploadPath); err != nil {
		return err
	}

	items, err := a.media.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No videos yet. Use 'upload' to add one.")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, v := range items {
		cover := "-"
		if v.HasImage {
			cover = "yes"
		}
		rows = append(rows, []string{
			v.ID,
			v.Title,
			humanize.IBytes(uint64(v.Size)),
			v.VideoType,
			cover,
			humanize.Time(v.CreatedAt),
		})
	}
	fmt.Fprintln(a.out, renderTable(
		[]string{"ID", "Title", "Size", "Type", "Cover", "Added"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}

// Play hands out fresh URLs for a stored video and prints where a player
// can fetch them. URLs of the previously playing video are revoked.
func (a *App) Play(ctx context.Context, id string) error {
	if err := a.requireAuth(uploadPath); err != nil {
		return err
	}

	urls, err := a.media.GetURLs(ctx, id)
	if err != nil {
		return err
	}

	a.media.Revoke(a.playing)
	a.playing = urls

	videoURL, err := a.preview.URL(urls.VideoURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Video:", videoURL)
	fmt.Fprintln(a.out, "       ", urls.VideoURL)

	if urls.ImageURL != nil {
		imageURL, err := a.preview.URL(*urls.ImageURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cover:", imageURL)
	}
	return nil
}

// Stop revokes the URLs handed out by the last Play.
func (a *App) Stop(_ context.Context) error {
	if a.playing == nil {
		fmt.Fprintln(a.out, "Nothing is playing")
		return nil
	}
	a.media.Revoke(a.playing)
	a.playing = nil
	fmt.Fprintln(a.out, "Stopped")
	return nil
}

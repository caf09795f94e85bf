// Package netx contains HTTP helpers shared by the client components.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotImage means the response was fetched but is not an image.
var ErrNotImage = errors.New("not an image")

// sniffLen is how much of the body is read when the server sends no
// usable Content-Type.
const sniffLen = 512

// ProbeImage fetches url and reports whether it can be loaded as an image:
// a 2xx status and an image/* content type, declared or sniffed.
// The body is never read beyond the sniffing window.
func ProbeImage(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe %s: %s", url, resp.Status)
	}

	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "image/") {
		return nil
	}
	if ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		return fmt.Errorf("probe %s: %w (%s)", url, ErrNotImage, ct)
	}

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(resp.Body, head)
	if !IsImage(head[:n]) {
		return fmt.Errorf("probe %s: %w", url, ErrNotImage)
	}
	return nil
}

// IsImage sniffs b. http.DetectContentType does not know AVIF, so the ISO
// BMFF brand is checked by hand.
func IsImage(b []byte) bool {
	if strings.HasPrefix(http.DetectContentType(b), "image/") {
		return true
	}
	return len(b) >= 12 && string(b[4:8]) == "ftyp" &&
		(string(b[8:12]) == "avif" || string(b[8:12]) == "avis")
}

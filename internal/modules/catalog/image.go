package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ImageKey is the bucket key for an image uploaded at now under the given
// file name: public/<unix millis>_<sanitised lower-cased name>.
func ImageKey(now time.Time, name string) string {
	safe := strings.ToLower(unsafeKeyChars.ReplaceAllString(name, "_"))
	return fmt.Sprintf("public/%d_%s", now.UnixMilli(), safe)
}

func (s *Store) uploadImage(ctx context.Context, img *Image) (string, error) {
	if s.bucket == nil {
		return "", fmt.Errorf("image upload failed: %w", remote.ErrNotConfigured)
	}
	key := ImageKey(s.now(), img.Name)

	var url string
	err := remote.Call("storage.upload", func() error {
		var err error
		url, err = s.bucket.Upload(ctx, key, img.ContentType, img.Body)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	return url, nil
}

package file_store

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrStorageUnavailable marks a transient backend fault. The whole upload
	// is safe to retry since no post record exists yet.
	ErrStorageUnavailable = errors.New("image storage unavailable")
	// ErrQuotaExceeded marks an exhausted storage budget. Retrying will not
	// help until the quota changes.
	ErrQuotaExceeded = errors.New("image storage quota exceeded")
)

// ImageStore is durable storage for uploaded image binaries. Put returns a
// key that must stay resolvable through GetUrlFromKey once Put has returned;
// the resolved URL is what gets persisted on the post.
type ImageStore interface {
	Put(ctx context.Context, ownerId string, fileName string, body io.Reader) (key string, err error)
	GetUrlFromKey(key string) string
	CleanUp()
}

// GenerateKey builds the storage key for an upload. The nanosecond component
// keeps a later upload of the same file name from overwriting an earlier one.
func GenerateKey(ownerId string, fileName string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("posts/%s/%d_%s", ownerId, now.UnixNano(), base)
}

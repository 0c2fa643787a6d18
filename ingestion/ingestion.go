package ingestion

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/bacon13/picfeed/file_store"
	"github.com/bacon13/picfeed/model"
	Logger "github.com/bacon13/picfeed/utils/log"
	"github.com/pkg/errors"
)

// DefaultMaxImageBytes caps uploads at 5 MiB unless configured otherwise.
const DefaultMaxImageBytes = 5 << 20

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrInvalidMedia    = errors.New("uploaded content is not an image")
	ErrPayloadTooLarge = errors.New("uploaded image exceeds the size cap")
	// ErrMetadataWriteFailed means the image is durable but the post record
	// write failed. No post references the image so readers never see it;
	// retrying the whole upload is safe but leaves the blob orphaned.
	ErrMetadataWriteFailed = errors.New("post record write failed")
)

// PostInserter is the slice of the post repository the ingestion path needs.
type PostInserter interface {
	Insert(ctx context.Context, ownerId string, imageLocator string, now time.Time) (*model.Post, error)
}

// Service turns an uploaded image binary into a durable post. The image is
// written first and the post record second, never the other way around, so a
// post is observable only once its image is retrievable.
type Service struct {
	store    file_store.ImageStore
	repo     PostInserter
	maxBytes int64
	now      func() time.Time
}

func NewService(store file_store.ImageStore, repo PostInserter, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Service{
		store:    store,
		repo:     repo,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// CreatePost validates the upload, stores the image, then inserts the post
// record. All checks run before any external call so a rejected upload
// leaves no trace in either store.
func (s *Service) CreatePost(ctx context.Context, callerId string, image []byte, fileName string, contentType string) (*model.Post, error) {
	if callerId == "" {
		return nil, ErrUnauthenticated
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Wrap(ErrInvalidMedia, contentType)
	}
	if int64(len(image)) > s.maxBytes {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d bytes, cap %d", len(image), s.maxBytes)
	}

	key, err := s.store.Put(ctx, callerId, fileName, bytes.NewReader(image))
	if err != nil {
		// No post record exists, the whole call is safe to retry.
		return nil, err
	}

	// The post stores the resolved URL, not the raw storage key, so readers
	// of any feed view can fetch the image directly from the locator.
	locator := s.store.GetUrlFromKey(key)

	// Microsecond truncation keeps the in-memory timestamps identical to
	// what the repository's backing store persists.
	post, err := s.repo.Insert(ctx, callerId, locator, s.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		Logger.Log.Error("post record write failed, orphaned image key: ", key, " err: ", err)
		return nil, errors.Wrap(ErrMetadataWriteFailed, err.Error())
	}

	Logger.Log.Info("created post ", post.Id, " for user ", callerId)
	return post, nil
}

package feed

import (
	"context"

	"github.com/bacon13/picfeed/model"
	"github.com/bacon13/picfeed/utils"
	"github.com/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrInvalidCursor   = errors.New("pagination cursor is malformed")
)

// PostLister is the slice of the post repository the read path needs.
type PostLister interface {
	ListAll(ctx context.Context, cursor *model.Cursor, limit int) (*model.PostPage, error)
	ListByOwner(ctx context.Context, ownerId string, cursor *model.Cursor, limit int) (*model.PostPage, error)
}

// Engine serves the two read views. Ordering and paging live entirely in the
// repository; this layer only clamps page sizes, decodes cursors and guards
// the own-posts view behind an identity. There is deliberately no cache,
// every call is a fresh read.
type Engine struct {
	repo PostLister
}

func NewEngine(repo PostLister) *Engine {
	return &Engine{repo: repo}
}

// GetFeed returns one page of the global reverse-chronological feed.
func (e *Engine) GetFeed(ctx context.Context, cursorToken string, limit int) (*model.PostPage, error) {
	cursor, limit, err := sanitizePageRequest(cursorToken, limit)
	if err != nil {
		return nil, err
	}
	return e.repo.ListAll(ctx, cursor, limit)
}

// GetUserPosts returns one page of the caller's own posts.
func (e *Engine) GetUserPosts(ctx context.Context, callerId string, cursorToken string, limit int) (*model.PostPage, error) {
	if callerId == "" {
		return nil, ErrUnauthenticated
	}
	cursor, limit, err := sanitizePageRequest(cursorToken, limit)
	if err != nil {
		return nil, err
	}
	return e.repo.ListByOwner(ctx, callerId, cursor, limit)
}

func sanitizePageRequest(cursorToken string, limit int) (*model.Cursor, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = utils.Min(limit, MaxPageSize)

	if cursorToken == "" {
		return nil, limit, nil
	}
	cursor, err := model.DecodeCursor(cursorToken)
	if err != nil {
		return nil, 0, errors.Wrap(ErrInvalidCursor, err.Error())
	}
	return cursor, limit, nil
}

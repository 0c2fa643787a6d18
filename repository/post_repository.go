package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bacon13/picfeed/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrWriteConflict is returned when the underlying store rejects an insert on
// a duplicate primary key. With UUID ids this signals a logic error, not a
// retryable race, so callers must not retry blindly.
var ErrWriteConflict = errors.New("conflicting post write")

// PostRepository is the durable record of posts, queryable by owner and by
// creation time. List queries page with a keyset cursor on
// (created_at desc, id desc) so concurrent inserts never skip or duplicate
// items for an iteration already in flight.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Insert creates the post record and assigns its id and timestamps. The
// image must already be durable under imageLocator before this is called,
// that sequencing is what keeps half-finished uploads invisible to readers.
func (r *PostRepository) Insert(ctx context.Context, ownerId string, imageLocator string, now time.Time) (*model.Post, error) {
	post := &model.Post{
		Id:           uuid.New().String(),
		OwnerId:      ownerId,
		ImageLocator: imageLocator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, errors.Wrap(ErrWriteConflict, err.Error())
		}
		return nil, err
	}
	return post, nil
}

// ListAll returns one page of the global feed.
func (r *PostRepository) ListAll(ctx context.Context, cursor *model.Cursor, limit int) (*model.PostPage, error) {
	return r.list(r.db.WithContext(ctx).Model(&model.Post{}), cursor, limit)
}

// ListByOwner returns one page of a single user's posts, same order as the
// global feed.
func (r *PostRepository) ListByOwner(ctx context.Context, ownerId string, cursor *model.Cursor, limit int) (*model.PostPage, error) {
	query := r.db.WithContext(ctx).Model(&model.Post{}).Where("owner_id = ?", ownerId)
	return r.list(query, cursor, limit)
}

func (r *PostRepository) list(query *gorm.DB, cursor *model.Cursor, limit int) (*model.PostPage, error) {
	if cursor != nil {
		// Row-value comparison matches the (created_at desc, id desc) order.
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.Id)
	}

	var posts []*model.Post
	result := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}

	page := &model.PostPage{Items: posts}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		next := (&model.Cursor{CreatedAt: last.CreatedAt, Id: last.Id}).Encode()
		page.NextCursor = &next
	}
	return page, nil
}

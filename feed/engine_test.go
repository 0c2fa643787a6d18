package feed

import (
	"context"
	"testing"
	"time"

	"github.com/bacon13/picfeed/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeLister records the arguments the engine passes down.
type fakeLister struct {
	gotOwner  string
	gotCursor *model.Cursor
	gotLimit  int
}

func (f *fakeLister) ListAll(ctx context.Context, cursor *model.Cursor, limit int) (*model.PostPage, error) {
	f.gotCursor, f.gotLimit = cursor, limit
	return &model.PostPage{}, nil
}

func (f *fakeLister) ListByOwner(ctx context.Context, ownerId string, cursor *model.Cursor, limit int) (*model.PostPage, error) {
	f.gotOwner, f.gotCursor, f.gotLimit = ownerId, cursor, limit
	return &model.PostPage{}, nil
}

func TestGetFeedClampsLimit(t *testing.T) {
	lister := &fakeLister{}
	engine := NewEngine(lister)

	_, err := engine.GetFeed(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultPageSize, lister.gotLimit)

	_, err = engine.GetFeed(context.Background(), "", 5000)
	require.NoError(t, err)
	require.Equal(t, MaxPageSize, lister.gotLimit)

	_, err = engine.GetFeed(context.Background(), "", 7)
	require.NoError(t, err)
	require.Equal(t, 7, lister.gotLimit)
}

func TestGetFeedDecodesCursor(t *testing.T) {
	lister := &fakeLister{}
	engine := NewEngine(lister)

	at := time.Date(2023, 4, 12, 9, 30, 15, 0, time.UTC)
	token := (&model.Cursor{CreatedAt: at, Id: "post-9"}).Encode()
	_, err := engine.GetFeed(context.Background(), token, 10)
	require.NoError(t, err)
	require.NotNil(t, lister.gotCursor)
	require.True(t, lister.gotCursor.CreatedAt.Equal(at))
	require.Equal(t, "post-9", lister.gotCursor.Id)
}

func TestGetFeedRejectsMalformedCursor(t *testing.T) {
	engine := NewEngine(&fakeLister{})

	_, err := engine.GetFeed(context.Background(), "!!!", 10)
	require.True(t, errors.Is(err, ErrInvalidCursor))
}

func TestGetUserPostsRequiresIdentity(t *testing.T) {
	lister := &fakeLister{}
	engine := NewEngine(lister)

	_, err := engine.GetUserPosts(context.Background(), "", "", 10)
	require.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = engine.GetUserPosts(context.Background(), "user-1", "", 10)
	require.NoError(t, err)
	require.Equal(t, "user-1", lister.gotOwner)
}

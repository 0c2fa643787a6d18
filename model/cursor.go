package model

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

/*

Cursor is the keyset pagination token for feed queries.

It encodes the (CreatedAt, Id) sort key of the last item a client has seen;
the next page is everything strictly below that pair in the
(CreatedAt desc, Id desc) total order. Unlike a numeric offset this stays
correct when new posts are inserted between page fetches: new posts sort
above the cursor and are simply excluded from the iteration in progress.

The wire form is base64url of "<unix-micros>:<post-id>". Microseconds match
the timestamp precision Postgres stores, so a cursor built from a returned
row round-trips exactly.
*/

type Cursor struct {
	CreatedAt time.Time
	Id        string
}

func (c *Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UTC().UnixNano()/int64(time.Microsecond), c.Id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Wrap(err, "cursor is not valid base64url")
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, errors.New("cursor is missing the sort key pair")
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "cursor timestamp is not an integer")
	}
	return &Cursor{
		CreatedAt: time.Unix(0, micros*int64(time.Microsecond)).UTC(),
		Id:        parts[1],
	}, nil
}

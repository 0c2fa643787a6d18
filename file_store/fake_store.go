package file_store

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"time"
)

// FakeUrlPrefix is where the fake pretends its objects are served from.
// Keeping it distinct from the key forces callers to resolve keys through
// GetUrlFromKey instead of leaking raw keys to clients.
const FakeUrlPrefix = "https://img.invalid/"

// FakeImageStore is an in-memory store for tests. PutErr, when set, is
// returned from Put without recording anything, to simulate backend faults.
type FakeImageStore struct {
	PutErr  error
	Objects map[string][]byte
}

func NewFakeImageStore() *FakeImageStore {
	return &FakeImageStore{Objects: map[string][]byte{}}
}

func (s *FakeImageStore) Put(ctx context.Context, ownerId string, fileName string, body io.Reader) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := GenerateKey(ownerId, fileName, time.Now())
	s.Objects[key] = data
	return key, nil
}

func (s *FakeImageStore) GetUrlFromKey(key string) string {
	return FakeUrlPrefix + key
}

// ObjectByUrl returns the stored bytes for a URL previously produced by
// GetUrlFromKey, for asserting that a locator resolves.
func (s *FakeImageStore) ObjectByUrl(url string) ([]byte, bool) {
	if !strings.HasPrefix(url, FakeUrlPrefix) {
		return nil, false
	}
	data, ok := s.Objects[strings.TrimPrefix(url, FakeUrlPrefix)]
	return data, ok
}

func (s *FakeImageStore) CleanUp() {}

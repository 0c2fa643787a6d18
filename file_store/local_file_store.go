package file_store

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	TmpFileDirPrefix = "_tmp_image_store_"
)

// LocalImageStore keeps uploads on local disk for development runs. The
// directory layout mirrors the S3 key layout so locators are interchangeable.
type LocalImageStore struct {
	bucket     string
	folderName string
}

func NewLocalImageStore(bucket string) (*LocalImageStore, error) {
	folderName, err := createFolder(TmpFileDirPrefix + bucket)
	if err != nil {
		return nil, err
	}

	return &LocalImageStore{
		bucket:     bucket,
		folderName: folderName,
	}, nil
}

func createFolder(folderName string) (string, error) {
	err := os.MkdirAll(folderName, os.ModePerm)
	if err != nil && strings.Contains(err.Error(), "file exists") {
		return folderName, nil
	}
	return folderName, err
}

func (s *LocalImageStore) Put(ctx context.Context, ownerId string, fileName string, body io.Reader) (string, error) {
	key := GenerateKey(ownerId, fileName, time.Now())

	fullPath := filepath.Join(s.folderName, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return "", errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	if err := ioutil.WriteFile(fullPath, data, 0644); err != nil {
		return "", errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	return key, nil
}

func (s *LocalImageStore) GetUrlFromKey(key string) string {
	return "file://" + filepath.Join(s.folderName, key)
}

func (s *LocalImageStore) CleanUp() {
	os.RemoveAll(s.folderName)
}

package file_store

import (
	"context"
	"io"
	"os"
	"time"

	Logger "github.com/bacon13/picfeed/utils/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

const (
	TestS3Bucket      = "picfeed-dev-bucket"
	ProdS3ImageBucket = "picfeed-post-images"
	CloudFrontPrefix  = "https://d3f8x2k1q7v0mh.cloudfront.net/"
)

type S3ImageStore struct {
	bucket   string
	uploader *s3manager.Uploader
}

func NewS3ImageStore(bucket string) (*S3ImageStore, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-west-1"
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3ImageStore{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (s *S3ImageStore) Put(ctx context.Context, ownerId string, fileName string, body io.Reader) (string, error) {
	key := GenerateKey(ownerId, fileName, time.Now())

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		Logger.Log.Warn("fail to upload image to s3, key: ", key, " err: ", err)
		return "", classifyUploadError(err)
	}
	return key, nil
}

// classifyUploadError folds the many AWS failure shapes into the two kinds
// callers act on.
func classifyUploadError(err error) error {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		switch aerr.Code() {
		case "QuotaExceeded", "AccountProblem", "TooManyBuckets":
			return errors.Wrap(ErrQuotaExceeded, aerr.Message())
		}
	}
	return errors.Wrap(ErrStorageUnavailable, err.Error())
}

func (s *S3ImageStore) GetUrlFromKey(key string) string {
	return CloudFrontPrefix + key
}

func (s *S3ImageStore) CleanUp() {
	// do nothing for s3
}

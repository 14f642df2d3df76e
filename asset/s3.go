package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var ErrMissingBucket = errors.New("resource: s3 location does not specify a bucket")

// Connection settings for s3 compatible object stores.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Read s3 settings from the PT_S3_* environment variables.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Region:    os.Getenv("PT_S3_REGION"),
		Endpoint:  os.Getenv("PT_S3_ENDPOINT"),
		AccessKey: os.Getenv("PT_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("PT_S3_SECRET_KEY"),
	}
}

var (
	s3Mutex  sync.Mutex
	s3Client s3iface.S3API
)

// Override the client used for s3:// resources. Passing nil makes the next
// s3 access build a client from the environment.
func SetS3Client(client s3iface.S3API) {
	s3Mutex.Lock()
	defer s3Mutex.Unlock()
	s3Client = client
}

// Build an s3 client from the supplied config. Static credentials are only
// used when both keys are set; otherwise the default aws credential chain
// applies.
func NewS3Client(cfg S3Config) (s3iface.S3API, error) {
	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}

func getS3Client() (s3iface.S3API, error) {
	s3Mutex.Lock()
	defer s3Mutex.Unlock()

	if s3Client == nil {
		client, err := NewS3Client(S3ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		s3Client = client
	}
	return s3Client, nil
}

func openS3Object(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}
	client, err := getS3Client()
	if err != nil {
		return nil, err
	}

	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func putS3Object(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if bucket == "" {
		return ErrMissingBucket
	}
	client, err := getS3Client()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(strings.TrimPrefix(key, "/")),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err = client.PutObjectWithContext(ctx, input)
	return err
}

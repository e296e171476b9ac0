package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/oops"

	"github.com/templatehub/backend/internal/config"
)

// Scheme is the URL scheme of object locations understood by S3Reader.
const Scheme = "s3"

// MaxObjectSize bounds how much of an object Fetch will buffer.
const MaxObjectSize = 8 << 20

type downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

type headClient interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Reader fetches whole objects from an S3-compatible service.
type S3Reader struct {
	client     headClient
	downloader downloader
}

// NewS3Reader configures a downloader targeting the provided object store.
func NewS3Reader(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Reader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, oops.With("operation", "load aws config").Wrap(err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	d := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = 5 * 1024 * 1024
		d.Concurrency = 1
	})

	return &S3Reader{client: client, downloader: d}, nil
}

// Fetch downloads the object at location, which must look like s3://bucket/key.
func (r *S3Reader) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, oops.With("operation", "head object", "bucket", bucket, "key", key).Wrap(err)
	}
	size := aws.ToInt64(head.ContentLength)
	if size > MaxObjectSize {
		return nil, oops.With("bucket", bucket, "key", key).Errorf("object is %d bytes, limit is %d", size, MaxObjectSize)
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
	n, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, oops.With("operation", "download object", "bucket", bucket, "key", key).Wrap(err)
	}

	return buf.Bytes()[:n], nil
}

// ParseLocation splits an s3://bucket/key URL into its bucket and key.
func ParseLocation(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parse object location: %w", err)
	}
	if u.Scheme != Scheme {
		return "", "", fmt.Errorf("object location %q: scheme must be %s", location, Scheme)
	}
	key := strings.TrimLeft(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("object location %q: bucket and key are required", location)
	}
	return u.Host, key, nil
}

// IsLocation reports whether source names an object in S3.
func IsLocation(source string) bool {
	return strings.HasPrefix(source, Scheme+"://")
}

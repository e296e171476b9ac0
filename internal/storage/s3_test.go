package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHead struct {
	size int64
	err  error
}

func (f fakeHead) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(f.size)}, nil
}

type fakeDownloader struct {
	objects map[string][]byte
	calls   int
}

func (f *fakeDownloader) Download(_ context.Context, w io.WriterAt, input *s3.GetObjectInput, _ ...func(*manager.Downloader)) (int64, error) {
	f.calls++
	body, ok := f.objects[aws.ToString(input.Bucket)+"/"+aws.ToString(input.Key)]
	if !ok {
		return 0, errors.New("NoSuchKey")
	}
	n, err := w.WriteAt(body, 0)
	return int64(n), err
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{location: "s3://seeds/catalog.json", wantBucket: "seeds", wantKey: "catalog.json"},
		{location: "s3://seeds/nested/dir/catalog.json", wantBucket: "seeds", wantKey: "nested/dir/catalog.json"},
		{location: "s3://seeds/", wantErr: true},
		{location: "s3:///catalog.json", wantErr: true},
		{location: "https://seeds/catalog.json", wantErr: true},
		{location: "catalog.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, key, err := ParseLocation(tt.location)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestIsLocation(t *testing.T) {
	assert.True(t, IsLocation("s3://bucket/key"))
	assert.False(t, IsLocation("./seed.json"))
	assert.False(t, IsLocation("builtin"))
}

func TestS3ReaderFetch(t *testing.T) {
	ctx := context.Background()
	body := []byte(`[{"id":"t1","name":"Landing Page"}]`)

	t.Run("downloads object", func(t *testing.T) {
		d := &fakeDownloader{objects: map[string][]byte{"seeds/catalog.json": body}}
		r := &S3Reader{client: fakeHead{size: int64(len(body))}, downloader: d}

		got, err := r.Fetch(ctx, "s3://seeds/catalog.json")
		require.NoError(t, err)
		assert.Equal(t, body, got)
		assert.Equal(t, 1, d.calls)
	})

	t.Run("rejects oversized objects", func(t *testing.T) {
		d := &fakeDownloader{}
		r := &S3Reader{client: fakeHead{size: MaxObjectSize + 1}, downloader: d}

		_, err := r.Fetch(ctx, "s3://seeds/huge.json")
		require.Error(t, err)
		assert.Zero(t, d.calls)
	})

	t.Run("head failure", func(t *testing.T) {
		r := &S3Reader{client: fakeHead{err: errors.New("AccessDenied")}, downloader: &fakeDownloader{}}

		_, err := r.Fetch(ctx, "s3://seeds/catalog.json")
		require.ErrorContains(t, err, "AccessDenied")
	})

	t.Run("invalid location", func(t *testing.T) {
		r := &S3Reader{client: fakeHead{}, downloader: &fakeDownloader{}}
		_, err := r.Fetch(ctx, "seeds/catalog.json")
		require.Error(t, err)
	})
}

package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/minio/minio-go/v7"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
)

type putCall struct {
	bucket, object, contentType, body string
}

type fakePutter struct {
	calls []putCall
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, _ := io.ReadAll(r)
	if int64(len(b)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	f.calls = append(f.calls, putCall{bucket, object, opts.ContentType, string(b)})
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, f.err
}

func TestMinIOArchive_Objects(t *testing.T) {
	fake := &fakePutter{}
	archive := newArchive(fake, "meeting-analyzer")
	archive.now = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 5, 0, time.UTC) }

	ctx := context.Background()
	assert.Equal(t, archive.ArchiveAnalysis(ctx, "doc1", []byte(`{"a":1}`)), nil)
	assert.Equal(t, archive.ArchiveRejectedOutput(ctx, "doc1", "not json", "unparsable_analysis"), nil)

	assert.Equal(t, len(fake.calls), 2)
	assert.Equal(t, fake.calls[0], putCall{"meeting-analyzer", "analyses/doc1/20250115T093005Z.json", "application/json", `{"a":1}`})
	assert.Equal(t, fake.calls[1], putCall{"meeting-analyzer", "rejected/doc1/20250115T093005Z-unparsable_analysis.txt", "text/plain; charset=utf-8", "not json"})
}

func TestMinIOArchive_Failure(t *testing.T) {
	fake := &fakePutter{err: errors.New("access denied")}
	archive := newArchive(fake, "b")

	err := archive.ArchiveAnalysis(context.Background(), "doc1", []byte(`{}`))

	appErr, ok := appErrors.As(err)
	assert.Equal(t, ok, true)
	assert.Equal(t, appErr.Code, appErrors.ErrorCode_INTEGRATION_STORAGE_FAILED)
}

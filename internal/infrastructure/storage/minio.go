package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// objectPutter is the subset of *minio.Client used for archiving
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOArchive stores accepted analyses and rejected model output in a bucket
type MinIOArchive struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

var _ repo.OutputArchive = (*MinIOArchive)(nil)

// NewMinIOArchive creates the MinIO client and makes sure the bucket exists
func NewMinIOArchive(ctx context.Context, cfg config.StorageConfig) (*MinIOArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if err := ensureBucket(ctx, minioClient, cfg.BucketName); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return newArchive(minioClient, cfg.BucketName), nil
}

func newArchive(client objectPutter, bucket string) *MinIOArchive {
	return &MinIOArchive{client: client, bucket: bucket, now: time.Now}
}

// ensureBucket creates the bucket when missing. The archive holds meeting content,
// so unlike a media bucket it gets no public read policy.
func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveAnalysis stores the record as analyses/{documentID}/{timestamp}.json
func (m *MinIOArchive) ArchiveAnalysis(ctx context.Context, documentID string, record []byte) error {
	object := AnalysisObjectName(documentID, m.now())
	if err := m.upload(ctx, object, record, "application/json"); err != nil {
		return appErrors.ErrStorageFailed("archive analysis", err).WithDetail("object", object)
	}
	return nil
}

// ArchiveRejectedOutput stores unusable model output as rejected/{documentID}/{timestamp}-{kind}.txt
func (m *MinIOArchive) ArchiveRejectedOutput(ctx context.Context, documentID, raw, kind string) error {
	object := RejectedObjectName(documentID, kind, m.now())
	if err := m.upload(ctx, object, []byte(raw), "text/plain; charset=utf-8"); err != nil {
		return appErrors.ErrStorageFailed("archive rejected output", err).WithDetail("object", object)
	}
	return nil
}

func (m *MinIOArchive) upload(ctx context.Context, objectName string, content []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func AnalysisObjectName(documentID string, at time.Time) string {
	return path.Join("analyses", documentID, at.UTC().Format("20060102T150405Z")+".json")
}

func RejectedObjectName(documentID, kind string, at time.Time) string {
	return path.Join("rejected", documentID, fmt.Sprintf("%s-%s.txt", at.UTC().Format("20060102T150405Z"), kind))
}

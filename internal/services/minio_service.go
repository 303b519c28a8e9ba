package services

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// BannerStorage stores banner images uploaded by admins.
type BannerStorage interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*UploadTicket, error)
	// IsManaged reports whether a banner URL points into the managed bucket.
	IsManaged(bannerURL string) bool
	Delete(ctx context.Context, bannerURL string) error
}

type UploadTicket struct {
	PresignedURL string    `json:"presigned_url"`
	PublicURL    string    `json:"public_url"`
	ObjectName   string    `json:"object_name"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

var allowedBannerTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type MinIOService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	expiry    time.Duration
	logger    *logrus.Logger
}

func NewMinIOService(cfg *config.MinIOConfig, logger *logrus.Logger) (*MinIOService, error) {
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
		"useSSL":   cfg.UseSSL,
	}).Info("MinIO client initialized successfully")

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	service := &MinIOService{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
		expiry:    expiry,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := service.ensureBucket(ctx, cfg.Region); err != nil {
		logger.WithError(err).Warn("Failed to configure bucket, but continuing...")
	}

	return service, nil
}

func (s *MinIOService) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created successfully")
	}

	// banners are served straight from the bucket
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	s.logger.WithField("bucket", s.bucket).Info("Bucket policy set to public read")
	return nil
}

// PresignUpload returns a presigned PUT URL for a new banner object and the
// public URL the movie should store once the upload is done.
func (s *MinIOService) PresignUpload(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	objectName, err := bannerObjectName(filename, contentType)
	if err != nil {
		return nil, err
	}

	presignedURL, err := s.client.PresignedPutObject(ctx, s.bucket, objectName, s.expiry)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filename":   filename,
		"objectPath": objectName,
		"expiry":     s.expiry,
	}).Info("Generated presigned URL")

	return &UploadTicket{
		PresignedURL: presignedURL.String(),
		PublicURL:    publicObjectURL(s.publicURL, s.bucket, objectName),
		ObjectName:   objectName,
		ContentType:  contentType,
		ExpiresAt:    time.Now().UTC().Add(s.expiry),
	}, nil
}

func (s *MinIOService) IsManaged(bannerURL string) bool {
	_, ok := managedObjectName(s.publicURL, s.bucket, bannerURL)
	return ok
}

// Delete removes a managed banner. URLs outside the bucket are ignored.
func (s *MinIOService) Delete(ctx context.Context, bannerURL string) error {
	objectName, ok := managedObjectName(s.publicURL, s.bucket, bannerURL)
	if !ok {
		return nil
	}

	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.WithError(err).WithField("objectPath", objectName).Error("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.WithField("objectPath", objectName).Info("File deleted successfully from MinIO")
	return nil
}

// bannerObjectName derives a unique object name, e.g. "dune_1a2b3c4d.jpg".
func bannerObjectName(filename, contentType string) (string, error) {
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." || filename == "/" {
		return "", apperrors.NewFieldError("filename", "is required")
	}
	defaultExt, ok := allowedBannerTypes[strings.ToLower(contentType)]
	if !ok {
		return "", apperrors.NewFieldError("contentType", "must be one of image/jpeg, image/png, image/webp, image/gif")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if ext == "" {
		ext = defaultExt
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	if name == "" {
		name = "banner"
	}
	return fmt.Sprintf("%s_%s%s", name, uuid.New().String()[:8], ext), nil
}

// publicObjectURL joins the scheme and host of the public base with the bucket
// and object name.
func publicObjectURL(publicBase, bucket, objectName string) string {
	u, err := url.Parse(publicBase)
	if err != nil || u.Host == "" {
		return fmt.Sprintf("http://%s/%s/%s", strings.TrimSuffix(publicBase, "/"), bucket, objectName)
	}
	return fmt.Sprintf("%s://%s/%s/%s", u.Scheme, u.Host, bucket, objectName)
}

// managedObjectName extracts the object name from a URL produced by
// publicObjectURL. Presign query strings are ignored.
func managedObjectName(publicBase, bucket, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	base, err := url.Parse(publicBase)
	if err != nil || !strings.EqualFold(base.Host, u.Host) {
		return "", false
	}
	prefix := "/" + bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(u.Path, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"law_office_desk/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Archive keeps a copy of every generated export and draft document.
type Archive interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (*StoredFile, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// StoredFile describes an archived file.
type StoredFile struct {
	Key      string
	FileName string
	Size     int64
	MimeType string
	URL      string
}

// signedURLExpiry is how long archive download links stay valid.
const signedURLExpiry = 15 * time.Minute

// NewArchive picks Cloudflare R2 when it is fully configured and reachable, else the local export directory.
func NewArchive(ctx context.Context, cfg *config.Config) Archive {
	if !cfg.R2Configured() {
		log.Info().Str("path", cfg.ExportDir).Msg("Export archive on local filesystem")
		return NewLocalArchive(cfg.ExportDir)
	}

	r2, err := NewR2Archive(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize R2 archive, falling back to local filesystem")
		return NewLocalArchive(cfg.ExportDir)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := r2.client.HeadBucket(pingCtx, &s3.HeadBucketInput{Bucket: aws.String(r2.bucket)}); err != nil {
		log.Warn().Err(err).Msg("R2 bucket connection test failed, falling back to local filesystem")
		return NewLocalArchive(cfg.ExportDir)
	}

	log.Info().Str("bucket", cfg.R2BucketName).Msg("Export archive on Cloudflare R2")
	return r2
}

// R2Archive stores files in a Cloudflare R2 bucket through the S3 API.
type R2Archive struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2Archive creates an R2 client from the configured credentials.
func NewR2Archive(ctx context.Context, cfg *config.Config) (*R2Archive, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Archive{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

func (r *R2Archive) Put(ctx context.Context, key string, content []byte, contentType string) (*StoredFile, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	url, err := r.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &StoredFile{
		Key:      key,
		FileName: filepath.Base(key),
		Size:     int64(len(content)),
		MimeType: contentType,
		URL:      url,
	}, nil
}

func (r *R2Archive) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

func (r *R2Archive) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// URL returns the public URL when one is configured, else a presigned link.
func (r *R2Archive) URL(ctx context.Context, key string) (string, error) {
	if r.publicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.publicURL, "/"), key), nil
	}
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(signedURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return req.URL, nil
}

// LocalArchive stores files under a directory on disk.
type LocalArchive struct {
	baseDir string
}

// NewLocalArchive creates a filesystem archive rooted at baseDir.
func NewLocalArchive(baseDir string) *LocalArchive {
	return &LocalArchive{baseDir: baseDir}
}

func (l *LocalArchive) path(key string) (string, error) {
	full := filepath.Join(l.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive key: %q", key)
	}
	return full, nil
}

func (l *LocalArchive) Put(ctx context.Context, key string, content []byte, contentType string) (*StoredFile, error) {
	full, err := l.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{
		Key:      key,
		FileName: filepath.Base(key),
		Size:     int64(len(content)),
		MimeType: contentType,
		URL:      "/" + filepath.ToSlash(filepath.Join(l.baseDir, key)),
	}, nil
}

func (l *LocalArchive) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	full, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, contentTypeFor(key), nil
}

func (l *LocalArchive) Delete(ctx context.Context, key string) error {
	full, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalArchive) URL(ctx context.Context, key string) (string, error) {
	return "/" + filepath.ToSlash(filepath.Join(l.baseDir, key)), nil
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// GenerateExportKey creates a unique key for an export: exports/<office>/<kind>/<uuid>_<unix>.<ext>.
func GenerateExportKey(office, kind, ext string, at time.Time) string {
	if office == "" {
		office = "global"
	}
	return fmt.Sprintf("exports/%s/%s/%s_%d.%s", slug(office), kind, uuid.New().String(), at.Unix(), ext)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "global"
	}
	return b.String()
}

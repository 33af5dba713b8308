package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/sirupsen/logrus"
)

const (
	recipeImagePrefix = "recipes/images"
	maxImageBytes     = 5 << 20
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded recipe image.
type Image struct {
	ContentType string
	Data        []byte
}

// Filename returns a fresh object name with an extension for the content type.
func (img *Image) Filename() string {
	return fmt.Sprintf("%s.%s", uuid.New().String(), imageExtensions[img.ContentType])
}

// DecodeImage parses a "data:image/<type>;base64,<payload>" string. The
// content type is sniffed from the bytes; the declared one must agree.
func DecodeImage(dataURL string) (*Image, error) {
	invalid := func(msg string) error {
		return apperror.Validation(apperror.ReasonInvalidImage, "image", msg)
	}

	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, invalid("image must be a base64 data URL")
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, invalid("image payload is not valid base64")
	}
	if len(data) == 0 {
		return nil, invalid("image is empty")
	}
	if len(data) > maxImageBytes {
		return nil, invalid(fmt.Sprintf("image exceeds %d bytes", maxImageBytes))
	}

	sniffed := http.DetectContentType(data)
	if _, ok := imageExtensions[sniffed]; !ok {
		return nil, invalid(fmt.Sprintf("unsupported image type %s", sniffed))
	}
	if declared != "" && declared != sniffed && !(declared == "image/jpg" && sniffed == "image/jpeg") {
		return nil, invalid(fmt.Sprintf("declared type %s does not match content %s", declared, sniffed))
	}

	return &Image{ContentType: sniffed, Data: data}, nil
}

// s3API is the subset of the S3 client used for recipe images.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps recipe images in an S3 bucket.
type S3ImageStore struct {
	client    s3API
	bucket    string
	publicURL string
	log       logrus.FieldLogger
}

// NewS3ImageStore creates an image store backed by the configured bucket.
func NewS3ImageStore(cfg *config.S3Config, log logrus.FieldLogger) *S3ImageStore {
	return &S3ImageStore{
		client:    cfg.Client,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
		log:       log,
	}
}

// Save uploads the image and returns its public URL.
func (s *S3ImageStore) Save(ctx context.Context, img *Image) (string, error) {
	key := path.Join(recipeImagePrefix, img.Filename())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.publicURL + "/" + key
	s.log.WithField("key", key).Debug("uploaded recipe image")
	return url, nil
}

// Delete removes an image previously returned by Save. Foreign URLs are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(url, prefix)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images under a directory served at urlPrefix.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(dir, urlPrefix string) *LocalImageStore {
	return &LocalImageStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, img *Image) (string, error) {
	dir := filepath.Join(s.dir, filepath.FromSlash(recipeImagePrefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	name := img.Filename()
	if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.urlPrefix + "/" + path.Join(recipeImagePrefix, name), nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.urlPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	rel := filepath.FromSlash(path.Clean(strings.TrimPrefix(url, prefix)))
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

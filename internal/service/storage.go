package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastebook/backend/config"
)

var (
	ErrStorageDisabled  = errors.New("object storage is not configured")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
)

const maxImageSize = 5 << 20 // 5 MiB

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// StorageService uploads user-supplied images to S3 and returns their
// public URLs. A nil S3 config disables uploads instead of crashing.
type StorageService struct {
	s3Config *config.S3Config
}

func NewStorageService(s3Config *config.S3Config) *StorageService {
	return &StorageService{s3Config: s3Config}
}

// UploadRecipeImage stores an image under the recipe's gallery prefix.
func (s *StorageService) UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, file *multipart.FileHeader) (string, error) {
	return s.upload(ctx, fmt.Sprintf("recipes/%s", recipeID), file)
}

// UploadAvatar stores a user's avatar image.
func (s *StorageService) UploadAvatar(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (string, error) {
	return s.upload(ctx, fmt.Sprintf("avatars/%s", userID), file)
}

func (s *StorageService) upload(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	if s.s3Config == nil || s.s3Config.Client == nil {
		return "", ErrStorageDisabled
	}
	if file.Size > maxImageSize {
		return "", ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && n == 0 {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	key := path.Join(prefix, uuid.New().String()+ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// Enabled reports whether uploads are available.
func (s *StorageService) Enabled() bool {
	return s != nil && s.s3Config != nil && s.s3Config.Client != nil
}

// objectKeyFromURL extracts the S3 key from a public URL produced by
// upload, for callers that later delete replaced objects.
func (s *StorageService) objectKeyFromURL(url string) (string, bool) {
	if s.s3Config == nil {
		return "", false
	}
	prefix := fmt.Sprintf("https://%s.s3.amazonaws.com/", s.s3Config.BucketName)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// DeleteObject removes a previously uploaded object by its public URL.
// Unknown URLs are ignored.
func (s *StorageService) DeleteObject(ctx context.Context, url string) error {
	if !s.Enabled() {
		return nil
	}
	key, ok := s.objectKeyFromURL(url)
	if !ok {
		return nil
	}
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	return err
}

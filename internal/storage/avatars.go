// Package storage uploads profile pictures to S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// putObjectAPI is the part of *s3.Client used here.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Avatars stores images under avatars/<uid>/<uuid>.<ext>.
type Avatars struct {
	client    putObjectAPI
	bucket    string
	publicURL string
	newID     func() string
}

// NewAvatars loads the default AWS configuration for region and returns an
// uploader for bucket.  Objects are addressed under publicURL, or the
// virtual-hosted bucket URL when publicURL is empty.
func NewAvatars(ctx context.Context, bucket, region, publicURL string) (*Avatars, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return newAvatars(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

func newAvatars(client putObjectAPI, bucket, publicURL string) *Avatars {
	return &Avatars{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		newID:     func() string { return uuid.NewString() },
	}
}

// Key returns the object key for a new avatar of uid.
func (a *Avatars) Key(uid, contentType string) string {
	return fmt.Sprintf("avatars/%s/%s%s", uid, a.newID(), extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Upload writes body to S3 and returns the public URL of the object.  The
// SDK derives the content length from seekable bodies such as multipart
// files; size is checked by the caller.
func (a *Avatars) Upload(ctx context.Context, uid, contentType string, body io.Reader, _ int64) (string, error) {
	key := a.Key(uid, contentType)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", key, err)
	}
	return a.publicURL + "/" + key, nil
}

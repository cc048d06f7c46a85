package annotate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/disintegration/imaging"
)

// DirSink writes annotated pages into a local directory, typically one
// served as static files.
type DirSink struct {
	Dir       string
	URLPrefix string // prepended to the file name to form the locator
}

// Store implements Sink.
func (s DirSink) Store(_ context.Context, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create annotation directory: %w", err)
	}
	if err := imaging.Save(img, filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return s.URLPrefix + name, nil
}

// S3Sink uploads annotated pages to an S3 bucket.
type S3Sink struct {
	Bucket   string
	Prefix   string
	uploader s3manageriface.UploaderAPI
}

// NewS3Sink creates a sink uploading to bucket in region. Credentials come
// from the standard AWS environment and config files.
func NewS3Sink(region, bucket, prefix string) (*S3Sink, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up aws session: %w", err)
	}
	return NewS3SinkWithUploader(s3manager.NewUploader(sess), bucket, prefix), nil
}

// NewS3SinkWithUploader creates a sink using an existing uploader.
func NewS3SinkWithUploader(u s3manageriface.UploaderAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{Bucket: bucket, Prefix: prefix, uploader: u}
}

// Store implements Sink. The locator is the uploaded object's URL.
func (s *S3Sink) Store(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(path.Join(s.Prefix, name)),
		Body:        &buf,
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return out.Location, nil
}

package publish

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/whenderson/siteshot/pkg/metadata"
)

type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Uploader copies each image to an S3 bucket under Prefix.
type Uploader struct {
	api    uploadAPI
	bucket string
	prefix string
}

// NewUploader creates an Uploader using the default AWS credential chain.
func NewUploader(bucket, prefix, region string) (*Uploader, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return &Uploader{api: s3manager.NewUploader(sess), bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key an image at p is stored under.
func (u *Uploader) Key(p string) string {
	return path.Join(u.prefix, filepath.Base(p))
}

// Process uploads the image at p.
func (u *Uploader) Process(ctx context.Context, post metadata.Post, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(u.Key(p)),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s: %w", p, u.bucket, err)
	}
	return nil
}

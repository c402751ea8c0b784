package aws

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// NewS3Client creates an S3 client. Path-style addressing is used when a
// custom endpoint is configured, which LocalStack requires.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

// PresignedUpload is a presigned PUT for a single object.
type PresignedUpload struct {
	UploadURL string            `json:"uploadUrl"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn int64             `json:"expiresIn"`
}

// ImagePresigner issues presigned uploads for product images.
type ImagePresigner struct {
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	endpoint  string
	cdnDomain string
}

func NewImagePresigner(client *s3.Client, bucket, prefix, endpoint, cdnDomain string) *ImagePresigner {
	return &ImagePresigner{
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// PresignProductImage returns a presigned PUT for a new image of the given product.
func (p *ImagePresigner) PresignProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, expires time.Duration) (*PresignedUpload, error) {
	key := fmt.Sprintf("%sproducts/%s/%s%s", p.prefix, productID, uuid.New(), strings.ToLower(filepath.Ext(filename)))

	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(p.bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string, len(req.SignedHeader))
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		Key:       key,
		PublicURL: p.publicURL(key),
		Headers:   headers,
		ExpiresIn: int64(expires.Seconds()),
	}, nil
}

func (p *ImagePresigner) publicURL(key string) string {
	switch {
	case p.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(p.cdnDomain, "/"), key)
	case p.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.endpoint, "/"), p.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
	}
}

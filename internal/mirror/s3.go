package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"hv-go/internal/config"
	"hv-go/internal/hv"
)

// S3Client abstracts the S3 API operations used by S3Mirror.
// The *s3.Client type satisfies this interface.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Mirror keeps document copies in an S3 (or S3-compatible) bucket under
// <prefix>/<vaultID>.json. Uploads go through the SDK upload manager, so
// large vaults are sent in parts.
type S3Mirror struct {
	client   S3Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Mirror creates an S3 mirror on top of a configured client.
func NewS3Mirror(client S3Client, bucket, prefix string) *S3Mirror {
	return &S3Mirror{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// NewS3MirrorFromConfig builds an s3.Client from the default AWS config chain,
// overridden by whatever region, endpoint and static credentials cfg sets.
func NewS3MirrorFromConfig(ctx context.Context, cfg config.MirrorConfig) (*S3Mirror, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 mirror requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Mirror(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

func (m *S3Mirror) key(vaultID string) string {
	name := vaultID + ".json"
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

// PutDocument uploads the document for vaultID, replacing any previous copy.
func (m *S3Mirror) PutDocument(ctx context.Context, vaultID string, r io.Reader, size int64) error {
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.key(vaultID)),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading document to s3://%s/%s: %w", m.bucket, m.key(vaultID), err)
	}
	return nil
}

// GetDocument downloads the document for vaultID and writes it to w.
// A missing object returns an error wrapping fs.ErrNotExist.
func (m *S3Mirror) GetDocument(ctx context.Context, vaultID string, w io.Writer) error {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key(vaultID)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return fmt.Errorf("document for vault %s: %w", vaultID, fs.ErrNotExist)
		}
		return fmt.Errorf("downloading document from s3://%s/%s: %w", m.bucket, m.key(vaultID), err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading s3 object body: %w", err)
	}
	return nil
}

// ValidateSetup checks that the bucket exists and is reachable with the configured credentials.
func (m *S3Mirror) ValidateSetup(ctx context.Context) error {
	if _, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", m.bucket, err)
	}
	return nil
}

// isS3NotFound reports whether err indicates the S3 object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// Compile-time check that S3Mirror implements hv.Mirror interface
var _ hv.Mirror = (*S3Mirror)(nil)

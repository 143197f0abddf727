package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// fakeS3 is an in-memory S3Client. Multipart uploads are not supported;
// the documents used in tests are well below the upload part size.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objects: make(map[string][]byte)}
}

func (f *fakeS3) checkBucket(name *string) error {
	if aws.ToString(name) != f.bucket {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "bucket does not exist"}
	}
	return nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "key does not exist"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

var errMultipart = fmt.Errorf("multipart upload not supported by fake")

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errMultipart
}

func TestS3Mirror(t *testing.T) {
	client := newFakeS3("hobby")
	m := NewS3Mirror(client, "hobby", "vaults")
	exerciseMirror(t, m)

	if _, ok := client.objects["vaults/vault-1.json"]; !ok {
		t.Errorf("expected object under prefix, have keys %v", keys(client.objects))
	}
}

func TestS3Mirror_Key(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "v1.json"},
		{prefix: "vaults", want: "vaults/v1.json"},
		{prefix: "vaults/", want: "vaults/v1.json"},
	}
	for _, tt := range tests {
		m := NewS3Mirror(newFakeS3("b"), "b", tt.prefix)
		if got := m.key("v1"); got != tt.want {
			t.Errorf("key() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestS3Mirror_MissingBucket(t *testing.T) {
	m := NewS3Mirror(newFakeS3("hobby"), "other", "")
	ctx := context.Background()

	if err := m.ValidateSetup(ctx); err == nil {
		t.Error("ValidateSetup() expected error for missing bucket")
	}

	var buf bytes.Buffer
	err := m.GetDocument(ctx, "v1", &buf)
	if err == nil {
		t.Fatal("GetDocument() expected error for missing bucket")
	}
	if isS3NotFound(err) {
		t.Error("a missing bucket must not be reported as a missing document")
	}
}

func TestIsS3NotFound(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: true},
		{err: &smithy.GenericAPIError{Code: "NotFound"}, want: true},
		{err: fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}), want: true},
		{err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: false},
		{err: errors.New("network down"), want: false},
	}
	for _, tt := range tests {
		if got := isS3NotFound(tt.err); got != tt.want {
			t.Errorf("isS3NotFound(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

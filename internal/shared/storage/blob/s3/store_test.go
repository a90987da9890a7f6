package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"resume-uploads/internal/shared/storage/blob"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/1_file.pdf", want: "user/1_file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/1_file.pdf", want: "root/user/1_file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/1_file.pdf", want: "root/user/1_file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/1_file.pdf", want: "root/user/1_file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/1_file.pdf", want: "root/sub/user/1_file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	lastPut *s3.PutObjectInput
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastPut = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	if _, exists := f.objects[aws.ToString(in.Key)]; exists && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutAppliesPrefixAndEncryption(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, Options{Bucket: "resumes", Prefix: "uploads/", KMSKeyID: "kms-1"})

	data := []byte("resume bytes")
	if err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := fake.objects["uploads/user-1/1_cv.pdf"]; !ok {
		t.Fatalf("expected object under prefixed key, have %v", fake.objects)
	}
	if fake.types["uploads/user-1/1_cv.pdf"] != "application/pdf" {
		t.Fatalf("unexpected content type %q", fake.types["uploads/user-1/1_cv.pdf"])
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected kms encryption, got %s", fake.lastPut.ServerSideEncryption)
	}
	if aws.ToInt64(fake.lastPut.ContentLength) != int64(len(data)) {
		t.Fatalf("expected content length %d, got %d", len(data), aws.ToInt64(fake.lastPut.ContentLength))
	}

	rc, err := store.Open(context.Background(), "user-1/1_cv.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestStoreOpenMissingMapsNotFound(t *testing.T) {
	store := NewWithClient(newFakeS3(), Options{Bucket: "resumes"})
	if _, err := store.Open(context.Background(), "user-1/missing.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePutWrapsBackendError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("throttled")
	store := NewWithClient(fake, Options{Bucket: "resumes"})
	err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf")
	if err == nil || errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestStorePutExistingKeyReturnsErrExists(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, Options{Bucket: "resumes"})

	if err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader([]byte("first")), 5, "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if aws.ToString(fake.lastPut.IfNoneMatch) != "*" {
		t.Fatalf("expected If-None-Match *, got %q", aws.ToString(fake.lastPut.IfNoneMatch))
	}
	err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader([]byte("second")), 6, "application/pdf")
	if !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if string(fake.objects["user-1/1_cv.pdf"]) != "first" {
		t.Fatalf("object overwritten: %q", fake.objects["user-1/1_cv.pdf"])
	}
}

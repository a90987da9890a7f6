package azure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azureblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"resume-uploads/internal/shared/storage/blob"
)

type fakeAzure struct {
	containers   map[string]bool
	objects      map[string][]byte
	types        map[string]string
	createErr    error
	lastUpload   *azblob.UploadStreamOptions
	downloadErr  error
	deletedNames []string
}

func newFakeAzure() *fakeAzure {
	return &fakeAzure{containers: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func respErr(code bloberror.Code, status int) error {
	return &azcore.ResponseError{ErrorCode: string(code), StatusCode: status}
}

func (f *fakeAzure) CreateContainer(ctx context.Context, name string, _ *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error) {
	if f.createErr != nil {
		return azblob.CreateContainerResponse{}, f.createErr
	}
	if f.containers[name] {
		return azblob.CreateContainerResponse{}, respErr(bloberror.ContainerAlreadyExists, http.StatusConflict)
	}
	f.containers[name] = true
	return azblob.CreateContainerResponse{}, nil
}

func (f *fakeAzure) UploadStream(ctx context.Context, container, name string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error) {
	f.lastUpload = o
	key := container + "/" + name
	if _, exists := f.objects[key]; exists && o != nil && o.AccessConditions != nil &&
		o.AccessConditions.ModifiedAccessConditions != nil &&
		o.AccessConditions.ModifiedAccessConditions.IfNoneMatch != nil &&
		*o.AccessConditions.ModifiedAccessConditions.IfNoneMatch == azcore.ETagAny {
		return azblob.UploadStreamResponse{}, respErr(bloberror.BlobAlreadyExists, http.StatusConflict)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return azblob.UploadStreamResponse{}, err
	}
	f.objects[key] = data
	if o != nil && o.HTTPHeaders != nil && o.HTTPHeaders.BlobContentType != nil {
		f.types[key] = *o.HTTPHeaders.BlobContentType
	}
	return azblob.UploadStreamResponse{}, nil
}

func (f *fakeAzure) DownloadStream(ctx context.Context, container, name string, _ *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	if f.downloadErr != nil {
		return azblob.DownloadStreamResponse{}, f.downloadErr
	}
	data, ok := f.objects[container+"/"+name]
	if !ok {
		return azblob.DownloadStreamResponse{}, respErr(bloberror.BlobNotFound, http.StatusNotFound)
	}
	return azblob.DownloadStreamResponse{
		DownloadResponse: azureblob.DownloadResponse{Body: io.NopCloser(bytes.NewReader(data))},
	}, nil
}

func (f *fakeAzure) DeleteBlob(ctx context.Context, container, name string, _ *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error) {
	key := container + "/" + name
	if _, ok := f.objects[key]; !ok {
		return azblob.DeleteBlobResponse{}, respErr(bloberror.BlobNotFound, http.StatusNotFound)
	}
	delete(f.objects, key)
	f.deletedNames = append(f.deletedNames, name)
	return azblob.DeleteBlobResponse{}, nil
}

func newTestStore(t *testing.T) (*Store, *fakeAzure) {
	t.Helper()
	fake := newFakeAzure()
	store, err := NewWithClient(context.Background(), fake, "resumes")
	if err != nil {
		t.Fatalf("NewWithClient: %v", err)
	}
	return store, fake
}

func TestNewValidatesSettings(t *testing.T) {
	if _, err := New(context.Background(), "", "resumes"); err == nil {
		t.Fatalf("expected error for empty connection string")
	}
	if _, err := New(context.Background(), "UseDevelopmentStorage=true", " "); err == nil {
		t.Fatalf("expected error for empty container")
	}
}

func TestNewRejectsMalformedConnectionString(t *testing.T) {
	if _, err := New(context.Background(), "not-a-connection-string", "resumes"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewWithClientToleratesExistingContainer(t *testing.T) {
	fake := newFakeAzure()
	fake.containers["resumes"] = true
	if _, err := NewWithClient(context.Background(), fake, "resumes"); err != nil {
		t.Fatalf("expected existing container to be accepted, got %v", err)
	}

	fake.createErr = respErr(bloberror.AuthorizationFailure, http.StatusForbidden)
	if _, err := NewWithClient(context.Background(), fake, "other"); err == nil {
		t.Fatalf("expected create container failure to surface")
	}
}

func TestPutOpenRoundTripKeepsContentType(t *testing.T) {
	store, fake := newTestStore(t)
	data := []byte("%PDF-1.7 resume")

	if err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fake.types["resumes/user-1/1_cv.pdf"] != "application/pdf" {
		t.Fatalf("content type not passed through: %q", fake.types["resumes/user-1/1_cv.pdf"])
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

func TestPutExistingKeyReturnsErrExists(t *testing.T) {
	store, fake := newTestStore(t)

	if err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader([]byte("first")), 5, "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	err := store.Put(context.Background(), "user-1/1_cv.pdf", bytes.NewReader([]byte("second")), 6, "application/pdf")
	if !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if string(fake.objects["resumes/user-1/1_cv.pdf"]) != "first" {
		t.Fatalf("blob overwritten: %q", fake.objects["resumes/user-1/1_cv.pdf"])
	}
}

func TestOpenMapsNotFoundAndWrapsOtherErrors(t *testing.T) {
	store, fake := newTestStore(t)

	if _, err := store.Open(context.Background(), "user-1/missing.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	fake.downloadErr = respErr(bloberror.ServerBusy, http.StatusServiceUnavailable)
	_, err := store.Open(context.Background(), "user-1/any.pdf")
	if err == nil || errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, fake := newTestStore(t)
	if err := store.Put(context.Background(), "u/1_x.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(context.Background(), "u/1_x.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "u/1_x.pdf"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if len(fake.deletedNames) != 1 {
		t.Fatalf("expected one real delete, got %v", fake.deletedNames)
	}
}

func TestRejectsInvalidKeys(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Put(context.Background(), "../escape.pdf", bytes.NewReader(nil), 0, ""); !errors.Is(err, blob.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

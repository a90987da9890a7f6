package azure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azureblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"resume-uploads/internal/shared/storage/blob"
	"resume-uploads/internal/shared/telemetry"
)

// API is the subset of *azblob.Client the store uses.
type API interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
	DeleteBlob(ctx context.Context, containerName, blobName string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)
}

// Store implements blob.Store on an Azure Blob Storage container.
type Store struct {
	client    API
	container string
}

// New builds a client from a storage account connection string and creates
// the container when it is missing.
func New(ctx context.Context, connString, container string) (*Store, error) {
	if strings.TrimSpace(connString) == "" {
		return nil, fmt.Errorf("azure storage connection string is required")
	}
	if strings.TrimSpace(container) == "" {
		return nil, fmt.Errorf("azure container name is required")
	}

	client, err := azblob.NewClientFromConnectionString(connString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return NewWithClient(ctx, client, container)
}

// NewWithClient wraps an existing client and ensures the container exists.
func NewWithClient(ctx context.Context, client API, container string) (*Store, error) {
	s := &Store{client: client, container: container}
	if err := s.ensureContainer(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err == nil {
		telemetry.Info("blob.container_created", map[string]any{"backend": "azure", "container": s.container})
		return nil
	}
	if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil
	}
	return fmt.Errorf("create container %s: %w", s.container, err)
}

// Put streams r as a block blob, conditional on no blob existing under key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if err := blob.CheckKey(key); err != nil {
		return err
	}
	ifNoneMatch := azcore.ETagAny
	opts := &azblob.UploadStreamOptions{
		AccessConditions: &azureblob.AccessConditions{
			ModifiedAccessConditions: &azureblob.ModifiedAccessConditions{IfNoneMatch: &ifNoneMatch},
		},
	}
	if contentType != "" {
		opts.HTTPHeaders = &azureblob.HTTPHeaders{BlobContentType: &contentType}
	}
	if _, err := s.client.UploadStream(ctx, s.container, key, r, opts); err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return blob.ErrExists
		}
		return fmt.Errorf("azure upload %s/%s: %w", s.container, key, err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := blob.CheckKey(key); err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("azure download %s/%s: %w", s.container, key, err)
	}
	return resp.Body, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := blob.CheckKey(key); err != nil {
		return err
	}
	if _, err := s.client.DeleteBlob(ctx, s.container, key, nil); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("azure delete %s/%s: %w", s.container, key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}

var _ blob.Store = (*Store)(nil)

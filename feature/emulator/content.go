package emulator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"

	"archive-manager/core/storage"
)

// ContentStore holds the raw bytes of uploaded files, addressed by an
// object key scoped to a record version.
type ContentStore interface {
	// Put stores the content under the object key, replacing any
	// previous content.
	Put(ctx context.Context, objectKey string, data []byte) error
	// Get returns the content stored under the object key, or
	// ErrNotFound when nothing was stored.
	Get(ctx context.Context, objectKey string) ([]byte, error)
	// Delete removes the content stored under the object key. Deleting
	// a missing object is not an error.
	Delete(ctx context.Context, objectKey string) error
}

// MemoryStore keeps file content in process memory. It is the default
// content backend and sufficient for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory content store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, objectKey string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, objectKey string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", objectKey, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}

// ObjectStore keeps file content in a bucket of an S3-compatible object
// store. It is used when the server is configured with the "storage"
// content backend.
type ObjectStore struct {
	client storage.Client
	bucket string
}

// NewObjectStore creates a content store backed by the given bucket.
// The bucket must already exist.
func NewObjectStore(client storage.Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

func (o *ObjectStore) Put(ctx context.Context, objectKey string, data []byte) error {
	_, err := o.client.PutObject(ctx, o.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", objectKey, err)
	}
	return nil
}

func (o *ObjectStore) Get(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}
	return data, nil
}

func (o *ObjectStore) Delete(ctx context.Context, objectKey string) error {
	if err := o.client.RemoveObject(ctx, o.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
	}
	return nil
}

package mocks

import (
	"context"
	"io"

	"archive-manager/core/archive"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of archive.Client
type Client struct {
	mock.Mock
}

func (m *Client) CreateRecord(ctx context.Context, payload archive.Document) (archive.Document, error) {
	args := m.Called(ctx, payload)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateDraft(ctx context.Context, recordID string) (archive.Document, error) {
	args := m.Called(ctx, recordID)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateVersion(ctx context.Context, recordID string) (archive.Document, error) {
	args := m.Called(ctx, recordID)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetDraft(ctx context.Context, recordID string) (archive.Document, error) {
	args := m.Called(ctx, recordID)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PutDraft(ctx context.Context, recordID string, draft archive.Document) (archive.Document, error) {
	args := m.Called(ctx, recordID, draft)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteDraft(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *Client) Publish(ctx context.Context, recordID string) (archive.Document, error) {
	args := m.Called(ctx, recordID)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetRecord(ctx context.Context, recordID string) (archive.Document, error) {
	args := m.Called(ctx, recordID)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListRecords(ctx context.Context, allVersions bool, size int) (archive.Document, error) {
	args := m.Called(ctx, allVersions, size)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListUserRecords(ctx context.Context, allVersions bool, size int) (archive.Document, error) {
	args := m.Called(ctx, allVersions, size)
	if doc, ok := args.Get(0).(archive.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListFiles(ctx context.Context, recordID string) ([]archive.FileEntry, error) {
	args := m.Called(ctx, recordID)
	if entries, ok := args.Get(0).([]archive.FileEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) RegisterFiles(ctx context.Context, recordID string, keys []string) error {
	args := m.Called(ctx, recordID, keys)
	return args.Error(0)
}

func (m *Client) UploadFileContent(ctx context.Context, recordID, key string, content io.Reader) error {
	args := m.Called(ctx, recordID, key, content)
	return args.Error(0)
}

func (m *Client) CommitFile(ctx context.Context, recordID, key string) error {
	args := m.Called(ctx, recordID, key)
	return args.Error(0)
}

func (m *Client) DeleteFile(ctx context.Context, recordID, key string) error {
	args := m.Called(ctx, recordID, key)
	return args.Error(0)
}

func (m *Client) ImportFiles(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

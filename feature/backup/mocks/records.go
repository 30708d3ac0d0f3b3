package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archive-manager/feature/record"
)

// Records is a mock implementation of backup.Records
type Records struct {
	mock.Mock
}

func (m *Records) Create(ctx context.Context, params record.CreateParams) (record.CreateResult, error) {
	args := m.Called(ctx, params)
	if res, ok := args.Get(0).(record.CreateResult); ok {
		return res, args.Error(1)
	}
	return record.CreateResult{}, args.Error(1)
}

func (m *Records) Update(ctx context.Context, params record.UpdateParams) (record.UpdateResult, error) {
	args := m.Called(ctx, params)
	if res, ok := args.Get(0).(record.UpdateResult); ok {
		return res, args.Error(1)
	}
	return record.UpdateResult{}, args.Error(1)
}

func (m *Records) PublishedUserRecordsWithTitle(ctx context.Context, title string) ([]string, error) {
	args := m.Called(ctx, title)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Records) ExistsAndIsPublished(ctx context.Context, recordID string) (bool, error) {
	args := m.Called(ctx, recordID)
	return args.Bool(0), args.Error(1)
}

func (m *Records) RecordTitle(ctx context.Context, recordID string) (string, error) {
	args := m.Called(ctx, recordID)
	return args.String(0), args.Error(1)
}

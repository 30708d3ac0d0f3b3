package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of labdb.Client
type Client struct {
	mock.Mock
}

func (m *Client) Authenticate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *Client) Capabilities(ctx context.Context, token string) (any, error) {
	args := m.Called(ctx, token)
	return args.Get(0), args.Error(1)
}

func (m *Client) AllRequests(ctx context.Context, token string) (any, error) {
	args := m.Called(ctx, token)
	return args.Get(0), args.Error(1)
}

func (m *Client) ResultsForRequests(ctx context.Context, token string) (any, error) {
	args := m.Called(ctx, token)
	return args.Get(0), args.Error(1)
}

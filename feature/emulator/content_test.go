package emulator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archive-manager/core/storage/mocks"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("Round Trip", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "abcde-fghij/data.csv", []byte("alpha")))

		data, err := store.Get(ctx, "abcde-fghij/data.csv")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), data)
	})

	t.Run("Returned Slice Is A Copy", func(t *testing.T) {
		data, err := store.Get(ctx, "abcde-fghij/data.csv")
		require.NoError(t, err)
		data[0] = 'X'

		again, err := store.Get(ctx, "abcde-fghij/data.csv")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), again)
	})

	t.Run("Missing Object", func(t *testing.T) {
		_, err := store.Get(ctx, "abcde-fghij/other.csv")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "abcde-fghij/data.csv"))
		_, err := store.Get(ctx, "abcde-fghij/data.csv")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is a no-op.
		assert.NoError(t, store.Delete(ctx, "abcde-fghij/data.csv"))
	})
}

func TestObjectStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Put", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("PutObject", mock.Anything, "archive-files", "abcde-fghij/data.csv",
			mock.Anything, int64(5), minio.PutObjectOptions{ContentType: "application/octet-stream"}).
			Return(minio.UploadInfo{}, nil)

		store := NewObjectStore(client, "archive-files")
		require.NoError(t, store.Put(ctx, "abcde-fghij/data.csv", []byte("alpha")))
		client.AssertExpectations(t)
	})

	t.Run("Get", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("GetObject", mock.Anything, "archive-files", "abcde-fghij/data.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("alpha")), nil)

		store := NewObjectStore(client, "archive-files")
		data, err := store.Get(ctx, "abcde-fghij/data.csv")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), data)
	})

	t.Run("Get Fails", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("GetObject", mock.Anything, "archive-files", "abcde-fghij/data.csv", minio.GetObjectOptions{}).
			Return(nil, errors.New("access denied"))

		store := NewObjectStore(client, "archive-files")
		_, err := store.Get(ctx, "abcde-fghij/data.csv")
		assert.ErrorContains(t, err, "failed to read object abcde-fghij/data.csv")
	})

	t.Run("Delete", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("RemoveObject", mock.Anything, "archive-files", "abcde-fghij/data.csv", minio.RemoveObjectOptions{}).
			Return(nil)

		store := NewObjectStore(client, "archive-files")
		require.NoError(t, store.Delete(ctx, "abcde-fghij/data.csv"))
		client.AssertExpectations(t)
	})
}

package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archive-manager/core/archive"
	"archive-manager/core/archive/mocks"
	"archive-manager/core/checksum"
)

func TestLocalInventory(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	writeFile("b.csv", "beta")
	writeFile("a.csv", "alpha")
	writeFile("metadata.yaml", "title: test")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.csv"), []byte("gamma"), 0o644))

	t.Run("Excludes Metadata And Subdirectories", func(t *testing.T) {
		inv, err := LocalInventory(dir, "metadata.yaml")
		require.NoError(t, err)

		assert.Equal(t, Inventory{
			{Name: "a.csv", Checksum: checksum.Bytes([]byte("alpha"))},
			{Name: "b.csv", Checksum: checksum.Bytes([]byte("beta"))},
		}, inv)
	})

	t.Run("No Excludes", func(t *testing.T) {
		inv, err := LocalInventory(dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.csv", "b.csv", "metadata.yaml"}, inv.Names())
	})

	t.Run("Missing Directory", func(t *testing.T) {
		_, err := LocalInventory(filepath.Join(dir, "does-not-exist"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does-not-exist")
	})
}

func TestRemoteInventory(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListFiles", mock.Anything, "abcde-fghij").Return([]archive.FileEntry{
		{Key: "x.csv", Checksum: "md5:aaa", Size: 3, Status: "completed"},
		{Key: "y.csv", Checksum: "md5:bbb", Size: 5, Status: "completed"},
	}, nil)

	inv, err := RemoteInventory(context.Background(), client, "abcde-fghij")
	require.NoError(t, err)

	assert.Equal(t, Inventory{
		{Name: "x.csv", Checksum: "md5:aaa"},
		{Name: "y.csv", Checksum: "md5:bbb"},
	}, inv)
	client.AssertExpectations(t)
}

func TestRemoteInventoryError(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListFiles", mock.Anything, "abcde-fghij").Return(nil, errors.New("listing failed"))

	_, err := RemoteInventory(context.Background(), client, "abcde-fghij")
	assert.ErrorContains(t, err, "listing failed")
}

func TestInventoryContains(t *testing.T) {
	inv := Inventory{
		{Name: "a", Checksum: "md5:1"},
		{Name: "b", Checksum: "md5:2"},
	}

	assert.True(t, inv.Contains(FileRecord{Name: "a", Checksum: "md5:1"}))
	assert.False(t, inv.Contains(FileRecord{Name: "a", Checksum: "md5:2"}))
	assert.False(t, inv.Contains(FileRecord{Name: "c", Checksum: "md5:1"}))
}

func TestInventoryNames(t *testing.T) {
	inv := Inventory{
		{Name: "b", Checksum: "md5:2"},
		{Name: "a", Checksum: "md5:1"},
	}

	assert.Equal(t, []string{"b", "a"}, inv.Names())
	assert.Empty(t, Inventory{}.Names())
}

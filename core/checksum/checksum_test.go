package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"Empty", "", "md5:d41d8cd98f00b204e9800998ecf8427e"},
		{"HelloWorld", "hello world", "md5:5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"JSON", `{"a":1}`, "md5:bb6cb5c68df4652941caf652a366f2d8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Known Content", func(t *testing.T) {
		path := filepath.Join(dir, "sample.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

		got, err := File(path)
		require.NoError(t, err)
		assert.Equal(t, "md5:5eb63bbbe01eeed093cb22bb8f5acdc3", got)
	})

	t.Run("Larger Than Chunk", func(t *testing.T) {
		// Content spanning several read chunks must hash the same as a
		// single in-memory pass.
		content := strings.Repeat("abcdefgh", 4096) // 32 KiB
		path := filepath.Join(dir, "large.bin")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		got, err := File(path)
		require.NoError(t, err)
		assert.Equal(t, Bytes([]byte(content)), got)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := File(filepath.Join(dir, "does-not-exist"))
		assert.Error(t, err)
	})
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "md5:d41d8cd98f00b204e9800998ecf8427e", Bytes(nil))
	assert.Equal(t, "md5:5eb63bbbe01eeed093cb22bb8f5acdc3", Bytes([]byte("hello world")))
	assert.True(t, strings.HasPrefix(Bytes([]byte("x")), Prefix))
}

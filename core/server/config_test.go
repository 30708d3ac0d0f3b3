package server_test

import (
	"testing"

	"archive-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidContentStore(t *testing.T) {
	tests := []struct {
		name  string
		store string
		want  bool
	}{
		{"Memory", server.ContentStoreMemory, true},
		{"Storage", server.ContentStoreStorage, true},
		{"Invalid", "invalid", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{ContentStore: tt.store}
			assert.Equal(t, tt.want, c.IsValidContentStore())
		})
	}
}

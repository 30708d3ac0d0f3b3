package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"archive-manager/core/archive"
	"archive-manager/core/checksum"
)

// LocalInventory enumerates the regular files at the top level of dir,
// fingerprinting each one. Subdirectories are ignored, as are any names
// listed in exclude (e.g. a metadata file kept next to the data files).
func LocalInventory(dir string, exclude ...string) (Inventory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	inv := make(Inventory, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isExcluded(entry.Name(), exclude) {
			continue
		}
		sum, err := checksum.File(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		inv = append(inv, FileRecord{Name: entry.Name(), Checksum: sum})
	}
	return inv, nil
}

// RemoteInventory fetches the files currently linked to a draft.
func RemoteInventory(ctx context.Context, client archive.Client, recordID string) (Inventory, error) {
	entries, err := client.ListFiles(ctx, recordID)
	if err != nil {
		return nil, err
	}

	inv := make(Inventory, 0, len(entries))
	for _, entry := range entries {
		inv = append(inv, FileRecord{Name: entry.Key, Checksum: entry.Checksum})
	}
	return inv, nil
}

func isExcluded(name string, exclude []string) bool {
	for _, e := range exclude {
		if name == e {
			return true
		}
	}
	return false
}

package record

import (
	"path/filepath"

	"archive-manager/core/utils"
)

// Export writes an API response as indented JSON to the output file,
// creating the parent directory if needed.
func Export(path string, doc any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	return utils.WriteJSON(path, doc)
}

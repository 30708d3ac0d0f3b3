package record

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"archive-manager/core/archive"
)

// Metadata is the user-provided record metadata (title, authors, etc)
// as read from a metadata YAML file. The schema is open-ended; the
// archive validates it server-side.
type Metadata map[string]any

// LoadMetadata reads and parses a metadata YAML file.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	if meta == nil {
		meta = Metadata{}
	}
	return meta, nil
}

// Title returns the title field, or "" if absent.
func (m Metadata) Title() string {
	title, _ := m["title"].(string)
	return title
}

// WithAdditionalDescription returns a copy of the metadata with extra
// appended to the description field. An empty extra leaves the metadata
// untouched.
func (m Metadata) WithAdditionalDescription(extra string) Metadata {
	if extra == "" {
		return m
	}
	next := make(Metadata, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	description, _ := m["description"].(string)
	next["description"] = description + extra
	return next
}

// Envelope wraps provided metadata in the full record payload the
// archive expects on creation: public access and file uploads enabled.
func Envelope(meta Metadata) archive.Document {
	return archive.Document{
		"access": map[string]any{
			"files":  "public",
			"record": "public",
			"status": "open",
		},
		"files": map[string]any{
			"enabled": true,
		},
		"metadata": map[string]any(meta),
	}
}

// ReplaceMetadata swaps the metadata block of a draft document for the
// provided one, keeping the rest of the draft (access, files, links)
// intact. An already stamped publication date is carried over so that
// updating a published version does not unset it.
func ReplaceMetadata(draft archive.Document, meta Metadata) archive.Document {
	next := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		next[k] = v
	}
	if date, ok := draft.Metadata()["publication_date"].(string); ok && date != "" {
		if _, provided := next["publication_date"]; !provided {
			next["publication_date"] = date
		}
	}
	draft["metadata"] = next
	return draft
}

// metadataExcludes returns the names to skip when enumerating the upload
// directory: the metadata file itself when it lives inside that directory.
func metadataExcludes(metadataFile, uploadDir string) []string {
	if metadataFile == "" {
		return nil
	}
	absMeta, err := filepath.Abs(metadataFile)
	if err != nil {
		return []string{filepath.Base(metadataFile)}
	}
	absDir, err := filepath.Abs(uploadDir)
	if err != nil {
		return []string{filepath.Base(metadataFile)}
	}
	if filepath.Dir(absMeta) == absDir {
		return []string{filepath.Base(absMeta)}
	}
	return nil
}

package archive

// Document is a raw archive API payload.
// The archive's metadata schema is open-ended, so payloads are kept as
// generic JSON objects and read through accessors for the fields the
// workflows branch on.
type Document map[string]any

// ID returns the record id of the document, or "" if absent.
func (d Document) ID() string {
	s, _ := d["id"].(string)
	return s
}

// IsPublished reports whether the document describes a published version.
func (d Document) IsPublished() bool {
	b, _ := d["is_published"].(bool)
	return b
}

// Metadata returns the document's metadata block, or nil if absent.
func (d Document) Metadata() map[string]any {
	m, _ := d["metadata"].(map[string]any)
	return m
}

// Title returns the record title from the metadata block, or "" if absent.
func (d Document) Title() string {
	s, _ := d.Metadata()["title"].(string)
	return s
}

// Hits returns the result documents of a search response
// (the content of hits.hits), or nil for non-search documents.
func (d Document) Hits() []Document {
	outer, _ := d["hits"].(map[string]any)
	items, _ := outer["hits"].([]any)
	if len(items) == 0 {
		return nil
	}
	hits := make([]Document, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			hits = append(hits, Document(m))
		}
	}
	return hits
}

// FileEntry describes one file linked to a record version.
type FileEntry struct {
	// Key is the file name the archive links the content under.
	Key string `json:"key"`
	// Checksum is the content fingerprint in "md5:<hex>" format.
	// It is empty while an upload is still pending.
	Checksum string `json:"checksum"`
	// Size is the content length in bytes.
	Size int64 `json:"size"`
	// Status is the upload state reported by the archive
	// ("pending" or "completed").
	Status string `json:"status,omitempty"`
}

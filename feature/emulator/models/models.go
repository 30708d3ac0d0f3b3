package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is a row in the archive_records table. One row is one version:
// a new version gets a new row sharing the parent id of its family.
// Metadata holds the published envelope, DraftMetadata the draft one.
type Record struct {
	ID            string    `gorm:"column:id;primaryKey"`
	ParentID      string    `gorm:"column:parent_id;index"`
	Metadata      string    `gorm:"column:metadata"`
	DraftMetadata string    `gorm:"column:draft_metadata"`
	IsPublished   bool      `gorm:"column:is_published"`
	HasDraft      bool      `gorm:"column:has_draft"`
	VersionIndex  int       `gorm:"column:version_index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name used by GORM.
func (Record) TableName() string {
	return "archive_records"
}

// Document renders the archive JSON representation of the row. The draft
// view uses the draft envelope, the published view the published one.
func (r Record) Document(draft bool) (map[string]any, error) {
	raw := r.Metadata
	if draft {
		raw = r.DraftMetadata
	}

	doc := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode stored metadata for record %s: %w", r.ID, err)
		}
	}
	doc["id"] = r.ID
	doc["parent"] = map[string]any{"id": r.ParentID}
	doc["is_published"] = r.IsPublished
	doc["is_draft"] = draft
	doc["versions"] = map[string]any{"index": r.VersionIndex}
	return doc, nil
}

// Upload states of a file link.
const (
	LinkPending   = "pending"
	LinkCompleted = "completed"
)

// FileLink is a row in the archive_files table. It links a file name to
// a record version; the content bytes live in the content store under
// ObjectKey.
type FileLink struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	RecordID  string `gorm:"column:record_id;uniqueIndex:idx_record_file"`
	Key       string `gorm:"column:file_key;uniqueIndex:idx_record_file"`
	Checksum  string `gorm:"column:checksum"`
	Size      int64  `gorm:"column:size"`
	Status    string `gorm:"column:status"`
	ObjectKey string `gorm:"column:object_key"`
}

// TableName overrides the table name used by GORM.
func (FileLink) TableName() string {
	return "archive_files"
}

// Entry renders the file listing entry for the link.
func (l FileLink) Entry() map[string]any {
	return map[string]any{
		"key":      l.Key,
		"checksum": l.Checksum,
		"size":     l.Size,
		"status":   l.Status,
	}
}

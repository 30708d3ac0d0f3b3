package emulator

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"archive-manager/feature/emulator/models"
)

// ErrNotFound is returned when a record, link, or content object does
// not exist.
var ErrNotFound = errors.New("not found")

// Store persists records and file links through GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store and migrates the emulator schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.Record{}, &models.FileLink{}); err != nil {
		return nil, fmt.Errorf("failed to migrate emulator schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) CreateRecord(ctx context.Context, rec *models.Record) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) SaveRecord(ctx context.Context, rec *models.Record) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteRecord removes a record row and all of its file links.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	if err := s.DeleteLinks(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// ListRecords returns record rows in creation order. With publishedOnly
// only published versions are considered. Without allVersions only the
// highest version of each entry is kept. A positive size caps the result.
func (s *Store) ListRecords(ctx context.Context, publishedOnly, allVersions bool, size int) ([]models.Record, error) {
	query := s.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var rows []models.Record
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if !allVersions {
		rows = latestPerParent(rows)
	}
	if size > 0 && len(rows) > size {
		rows = rows[:size]
	}
	return rows, nil
}

// latestPerParent keeps the highest version of each entry, preserving
// the overall ordering.
func latestPerParent(rows []models.Record) []models.Record {
	best := make(map[string]models.Record, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		current, seen := best[row.ParentID]
		if !seen {
			order = append(order, row.ParentID)
			best[row.ParentID] = row
			continue
		}
		if row.VersionIndex > current.VersionIndex {
			best[row.ParentID] = row
		}
	}
	out := make([]models.Record, 0, len(order))
	for _, parent := range order {
		out = append(out, best[parent])
	}
	return out
}

// LatestPublished returns the highest published version of an entry.
func (s *Store) LatestPublished(ctx context.Context, parentID string) (*models.Record, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND is_published = ?", parentID, true).
		Order("version_index DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("published version of %s: %w", parentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load published version of %s: %w", parentID, err)
	}
	return &rec, nil
}

// UnpublishedVersion returns the pending new version of an entry, if any.
// At most one unpublished version exists per entry.
func (s *Store) UnpublishedVersion(ctx context.Context, parentID string) (*models.Record, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND is_published = ?", parentID, false).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unpublished version of %s: %w", parentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load unpublished version of %s: %w", parentID, err)
	}
	return &rec, nil
}

// NextVersionIndex returns the version index for a new version of an entry.
func (s *Store) NextVersionIndex(ctx context.Context, parentID string) (int, error) {
	var maxIndex int
	err := s.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("parent_id = ?", parentID).
		Select("COALESCE(MAX(version_index), 0)").
		Scan(&maxIndex).Error
	if err != nil {
		return 0, fmt.Errorf("failed to determine version index for %s: %w", parentID, err)
	}
	return maxIndex + 1, nil
}

// ListLinks returns the file links of a record version ordered by key.
func (s *Store) ListLinks(ctx context.Context, recordID string) ([]models.FileLink, error) {
	var links []models.FileLink
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("file_key ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files of record %s: %w", recordID, err)
	}
	return links, nil
}

func (s *Store) GetLink(ctx context.Context, recordID, key string) (*models.FileLink, error) {
	var link models.FileLink
	err := s.db.WithContext(ctx).
		Where("record_id = ? AND file_key = ?", recordID, key).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("file %s of record %s: %w", key, recordID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file %s of record %s: %w", key, recordID, err)
	}
	return &link, nil
}

func (s *Store) CreateLink(ctx context.Context, link *models.FileLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to link file %s to record %s: %w", link.Key, link.RecordID, err)
	}
	return nil
}

func (s *Store) SaveLink(ctx context.Context, link *models.FileLink) error {
	if err := s.db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("failed to save file %s of record %s: %w", link.Key, link.RecordID, err)
	}
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, recordID, key string) error {
	err := s.db.WithContext(ctx).
		Where("record_id = ? AND file_key = ?", recordID, key).
		Delete(&models.FileLink{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete file %s of record %s: %w", key, recordID, err)
	}
	return nil
}

func (s *Store) DeleteLinks(ctx context.Context, recordID string) error {
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&models.FileLink{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete files of record %s: %w", recordID, err)
	}
	return nil
}

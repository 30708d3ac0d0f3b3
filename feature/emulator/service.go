package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"archive-manager/core/checksum"
	"archive-manager/feature/emulator/models"
)

// apiError maps an emulator failure to the HTTP status of the archive API.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func errRecordNotFound() error {
	return &apiError{status: http.StatusNotFound, message: "The persistent identifier does not exist."}
}

func errFileNotFound(key string) error {
	return &apiError{status: http.StatusNotFound, message: fmt.Sprintf("File %s does not exist.", key)}
}

func errBadRequest(message string) error {
	return &apiError{status: http.StatusBadRequest, message: message}
}

// Service implements the archive record lifecycle on top of the record
// store and a content store.
type Service struct {
	store   *Store
	content ContentStore
	log     *zap.Logger
}

// NewService creates an emulator service.
func NewService(store *Store, content ContentStore, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		content: content,
		log:     log,
	}
}

// CreateRecord creates a fresh unpublished draft from the envelope.
func (s *Service) CreateRecord(ctx context.Context, envelope map[string]any) (map[string]any, error) {
	id, err := s.mintID(ctx)
	if err != nil {
		return nil, err
	}
	parentID, err := s.mintID(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	rec := &models.Record{
		ID:            id,
		ParentID:      parentID,
		DraftMetadata: string(data),
		VersionIndex:  1,
		HasDraft:      true,
	}
	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info("created draft record", zap.String("record_id", id))
	return rec.Document(true)
}

// GetRecord returns the published view of a record version.
func (s *Service) GetRecord(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsPublished {
		return nil, errRecordNotFound()
	}
	return rec.Document(false)
}

// GetDraft returns the draft view of a record version.
func (s *Service) GetDraft(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasDraft {
		return nil, errRecordNotFound()
	}
	return rec.Document(true)
}

// PutDraft replaces the draft envelope of a record version.
func (s *Service) PutDraft(ctx context.Context, id string, envelope map[string]any) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasDraft {
		return nil, errRecordNotFound()
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	rec.DraftMetadata = string(data)
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec.Document(true)
}

// CreateDraft opens an edit draft on a published record version. The
// call is idempotent: an existing draft is returned as is.
func (s *Service) CreateDraft(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasDraft {
		rec.HasDraft = true
		rec.DraftMetadata = rec.Metadata
		if err := s.store.SaveRecord(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec.Document(true)
}

// DeleteDraft discards the draft of a record version. A draft that was
// never published disappears entirely, together with its files.
func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	rec, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	if !rec.HasDraft {
		return errRecordNotFound()
	}

	if rec.IsPublished {
		rec.HasDraft = false
		rec.DraftMetadata = ""
		return s.store.SaveRecord(ctx, rec)
	}

	links, err := s.store.ListLinks(ctx, id)
	if err != nil {
		return err
	}
	for _, link := range links {
		if err := s.content.Delete(ctx, link.ObjectKey); err != nil {
			return err
		}
	}
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted draft record", zap.String("record_id", id))
	return nil
}

// CreateVersion opens a new-version draft for the entry the given
// version belongs to. The new draft starts with the source metadata
// minus its publication date and with no files; links are brought over
// explicitly via ImportFiles. An existing unpublished version of the
// entry is returned instead of creating a second one.
func (s *Service) CreateVersion(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.UnpublishedVersion(ctx, rec.ParentID)
	if err == nil {
		return existing.Document(true)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	source := rec.Metadata
	if !rec.IsPublished {
		source = rec.DraftMetadata
	}
	draftEnvelope, err := editMetadata(source, func(meta map[string]any) {
		delete(meta, "publication_date")
	})
	if err != nil {
		return nil, err
	}

	newRecID, err := s.mintID(ctx)
	if err != nil {
		return nil, err
	}
	index, err := s.store.NextVersionIndex(ctx, rec.ParentID)
	if err != nil {
		return nil, err
	}

	version := &models.Record{
		ID:            newRecID,
		ParentID:      rec.ParentID,
		DraftMetadata: draftEnvelope,
		VersionIndex:  index,
		HasDraft:      true,
	}
	if err := s.store.CreateRecord(ctx, version); err != nil {
		return nil, err
	}

	s.log.Info("created new version draft",
		zap.String("record_id", newRecID),
		zap.String("previous_id", id),
		zap.Int("version_index", index))
	return version.Document(true)
}

// Publish turns the draft of a record version into its published state.
// A missing publication date is stamped with today's date.
func (s *Service) Publish(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasDraft {
		return nil, errRecordNotFound()
	}

	links, err := s.store.ListLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if link.Status != models.LinkCompleted {
			return nil, errBadRequest(fmt.Sprintf("The upload of file %s is not completed.", link.Key))
		}
	}

	published, err := editMetadata(rec.DraftMetadata, func(meta map[string]any) {
		if _, ok := meta["publication_date"]; !ok {
			meta["publication_date"] = time.Now().Format("2006-01-02")
		}
	})
	if err != nil {
		return nil, err
	}

	rec.Metadata = published
	rec.DraftMetadata = ""
	rec.IsPublished = true
	rec.HasDraft = false
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info("published record", zap.String("record_id", id), zap.Int("files", len(links)))
	return rec.Document(false)
}

// ListRecords returns the search view over published records.
func (s *Service) ListRecords(ctx context.Context, allVersions bool, size int) (map[string]any, error) {
	rows, err := s.store.ListRecords(ctx, true, allVersions, size)
	if err != nil {
		return nil, err
	}
	return s.searchResponse(rows, false)
}

// ListUserRecords returns the search view over all records of the
// emulated user, drafts included.
func (s *Service) ListUserRecords(ctx context.Context, allVersions bool, size int) (map[string]any, error) {
	rows, err := s.store.ListRecords(ctx, false, allVersions, size)
	if err != nil {
		return nil, err
	}
	return s.searchResponse(rows, true)
}

func (s *Service) searchResponse(rows []models.Record, includeDrafts bool) (map[string]any, error) {
	hits := make([]any, 0, len(rows))
	for _, row := range rows {
		doc, err := row.Document(includeDrafts && !row.IsPublished)
		if err != nil {
			return nil, err
		}
		hits = append(hits, doc)
	}
	return map[string]any{
		"hits": map[string]any{
			"hits":  hits,
			"total": len(hits),
		},
	}, nil
}

// ListFiles returns the file listing of a record version.
func (s *Service) ListFiles(ctx context.Context, id string) (map[string]any, error) {
	if _, err := s.record(ctx, id); err != nil {
		return nil, err
	}
	links, err := s.store.ListLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	return filesResponse(links), nil
}

func filesResponse(links []models.FileLink) map[string]any {
	entries := make([]any, 0, len(links))
	for _, link := range links {
		entries = append(entries, link.Entry())
	}
	return map[string]any{
		"enabled": true,
		"entries": entries,
	}
}

// RegisterFiles reserves file names on an unpublished draft. Content is
// uploaded and committed per file afterwards.
func (s *Service) RegisterFiles(ctx context.Context, id string, keys []string) (map[string]any, error) {
	rec, err := s.draftForFiles(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if key == "" {
			return nil, errBadRequest("A file key must not be empty.")
		}
		if _, err := s.store.GetLink(ctx, rec.ID, key); err == nil {
			return nil, errBadRequest(fmt.Sprintf("A file with key %s already exists.", key))
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		link := &models.FileLink{
			RecordID:  rec.ID,
			Key:       key,
			Status:    models.LinkPending,
			ObjectKey: objectKey(rec.ID, key),
		}
		if err := s.store.CreateLink(ctx, link); err != nil {
			return nil, err
		}
	}

	s.log.Debug("registered files", zap.String("record_id", id), zap.Int("count", len(keys)))
	return s.ListFiles(ctx, id)
}

// UploadContent stores the content of a registered file and computes
// its checksum server-side.
func (s *Service) UploadContent(ctx context.Context, id, key string, data []byte) error {
	rec, err := s.draftForFiles(ctx, id)
	if err != nil {
		return err
	}
	link, err := s.link(ctx, rec.ID, key)
	if err != nil {
		return err
	}

	if err := s.content.Put(ctx, link.ObjectKey, data); err != nil {
		return err
	}
	link.Checksum = checksum.Bytes(data)
	link.Size = int64(len(data))
	if err := s.store.SaveLink(ctx, link); err != nil {
		return err
	}

	s.log.Debug("stored file content",
		zap.String("record_id", id),
		zap.String("key", key),
		zap.Int("size", len(data)))
	return nil
}

// CommitFile finalizes an uploaded file.
func (s *Service) CommitFile(ctx context.Context, id, key string) (map[string]any, error) {
	rec, err := s.draftForFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	link, err := s.link(ctx, rec.ID, key)
	if err != nil {
		return nil, err
	}
	if link.Checksum == "" {
		return nil, errBadRequest(fmt.Sprintf("No content was uploaded for file %s.", key))
	}

	link.Status = models.LinkCompleted
	if err := s.store.SaveLink(ctx, link); err != nil {
		return nil, err
	}
	return link.Entry(), nil
}

// DeleteFile removes a file link and its content from a draft.
func (s *Service) DeleteFile(ctx context.Context, id, key string) error {
	rec, err := s.draftForFiles(ctx, id)
	if err != nil {
		return err
	}
	link, err := s.link(ctx, rec.ID, key)
	if err != nil {
		return err
	}

	if err := s.content.Delete(ctx, link.ObjectKey); err != nil {
		return err
	}
	if err := s.store.DeleteLink(ctx, rec.ID, key); err != nil {
		return err
	}

	s.log.Debug("deleted file", zap.String("record_id", id), zap.String("key", key))
	return nil
}

// ImportFiles copies the file links and content of the latest published
// version of the entry into an unpublished draft. Keys already present
// on the draft are left untouched.
func (s *Service) ImportFiles(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.draftForFiles(ctx, id)
	if err != nil {
		return nil, err
	}

	source, err := s.store.LatestPublished(ctx, rec.ParentID)
	if errors.Is(err, ErrNotFound) {
		return nil, errBadRequest("There is no published version to import files from.")
	}
	if err != nil {
		return nil, err
	}

	sourceLinks, err := s.store.ListLinks(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	imported := 0
	for _, sourceLink := range sourceLinks {
		if _, err := s.store.GetLink(ctx, rec.ID, sourceLink.Key); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		link := &models.FileLink{
			RecordID:  rec.ID,
			Key:       sourceLink.Key,
			Checksum:  sourceLink.Checksum,
			Size:      sourceLink.Size,
			Status:    sourceLink.Status,
			ObjectKey: objectKey(rec.ID, sourceLink.Key),
		}
		if sourceLink.Checksum != "" {
			data, err := s.content.Get(ctx, sourceLink.ObjectKey)
			if err != nil {
				return nil, err
			}
			if err := s.content.Put(ctx, link.ObjectKey, data); err != nil {
				return nil, err
			}
		}
		if err := s.store.CreateLink(ctx, link); err != nil {
			return nil, err
		}
		imported++
	}

	s.log.Info("imported files from published version",
		zap.String("record_id", id),
		zap.String("source_id", source.ID),
		zap.Int("count", imported))
	return s.ListFiles(ctx, id)
}

// record loads a row, translating a missing id into the API error.
func (s *Service) record(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errRecordNotFound()
	}
	return rec, err
}

// link loads a file link, translating a missing key into the API error.
func (s *Service) link(ctx context.Context, recordID, key string) (*models.FileLink, error) {
	link, err := s.store.GetLink(ctx, recordID, key)
	if errors.Is(err, ErrNotFound) {
		return nil, errFileNotFound(key)
	}
	return link, err
}

// draftForFiles loads a record whose file set may be modified. Files of
// published versions are immutable.
func (s *Service) draftForFiles(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsPublished {
		return nil, errBadRequest("Cannot modify the files of a published record.")
	}
	return rec, nil
}

// mintID draws record ids until one is unused.
func (s *Service) mintID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id := newID()
		_, err := s.store.GetRecord(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to mint an unused record id")
}

// objectKey addresses file content in the content store.
func objectKey(recordID, key string) string {
	return recordID + "/" + key
}

// editMetadata decodes an envelope, lets edit mutate its metadata
// block, and encodes it again.
func editMetadata(raw string, edit func(meta map[string]any)) (string, error) {
	envelope := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
			return "", fmt.Errorf("failed to decode envelope: %w", err)
		}
	}
	meta, _ := envelope["metadata"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	edit(meta)
	envelope["metadata"] = meta

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return string(data), nil
}

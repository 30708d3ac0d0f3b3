package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"archive-manager/core/archive"
	"archive-manager/core/reconcile"
)

// defaultListSize caps search responses high enough to return every
// record of a user in one page.
const defaultListSize = 1000000

// Service orchestrates record lifecycle operations against the archive.
// All remote calls run sequentially; the first failure aborts the
// operation and leaves the draft in whatever state it reached.
type Service struct {
	client archive.Client
	log    *zap.Logger
}

// NewService creates a record service on top of an archive client.
func NewService(client archive.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log}
}

// CreateParams controls the creation of a new record.
type CreateParams struct {
	// MetadataFile is the path to the metadata YAML file.
	MetadataFile string
	// UploadDir is the directory holding the data files to upload.
	UploadDir string
	// AdditionalDescription is appended to the metadata description.
	AdditionalDescription string
	// Publish publishes the created draft.
	Publish bool
}

// CreateResult reports the outcome of a Create call.
type CreateResult struct {
	// RecordID is the id the archive assigned to the new record.
	RecordID string
	// Uploaded lists the data files uploaded and linked.
	Uploaded []string
	// Published reports whether the record was published.
	Published bool
}

// Create creates a draft record from the metadata file, uploads every
// data file in the upload directory and optionally publishes the result.
func (s *Service) Create(ctx context.Context, p CreateParams) (CreateResult, error) {
	meta, err := LoadMetadata(p.MetadataFile)
	if err != nil {
		return CreateResult{}, err
	}
	meta = meta.WithAdditionalDescription(p.AdditionalDescription)

	doc, err := s.client.CreateRecord(ctx, Envelope(meta))
	if err != nil {
		return CreateResult{}, err
	}
	recordID := doc.ID()
	if recordID == "" {
		return CreateResult{}, fmt.Errorf("archive did not return an id for the created record")
	}
	s.log.Info("Created draft", zap.String("record_id", recordID))

	local, err := reconcile.LocalInventory(p.UploadDir, metadataExcludes(p.MetadataFile, p.UploadDir)...)
	if err != nil {
		return CreateResult{}, err
	}
	names := local.Names()
	if err := s.uploadFiles(ctx, recordID, p.UploadDir, names); err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{RecordID: recordID, Uploaded: names}
	if p.Publish {
		if err := s.publish(ctx, recordID); err != nil {
			return CreateResult{}, err
		}
		result.Published = true
	}
	return result, nil
}

// UpdateParams controls the update of a published record.
type UpdateParams struct {
	// RecordID is the id of the published version to update.
	RecordID string
	// NewVersion creates a new version with a new id instead of
	// updating the metadata of the published version in place.
	NewVersion bool
	// MetadataFile is the path to the metadata YAML file.
	MetadataFile string
	// UploadDir is the directory holding the data files for the new
	// version. Ignored for same-version updates.
	UploadDir string
	// AdditionalDescription is appended to the metadata description.
	AdditionalDescription string
	// Force prunes links whose files are absent from the upload
	// directory when creating a new version.
	Force bool
	// Publish publishes the new version. Same-version updates always
	// publish, since the version is already public.
	Publish bool
}

// UpdateResult reports the outcome of an Update call.
type UpdateResult struct {
	// RecordID is the id of the updated version. It differs from the
	// requested id when a new version was created.
	RecordID string
	// Plan is the reconciliation plan executed for a new version,
	// nil for same-version updates.
	Plan *reconcile.Plan
	// Published reports whether the version was published.
	Published bool
}

// Update updates a published record: either its metadata in place (same
// version, same id) or by creating a new version whose file links are
// reconciled against the upload directory.
func (s *Service) Update(ctx context.Context, p UpdateParams) (UpdateResult, error) {
	meta, err := LoadMetadata(p.MetadataFile)
	if err != nil {
		return UpdateResult{}, err
	}
	meta = meta.WithAdditionalDescription(p.AdditionalDescription)

	if !p.NewVersion {
		return s.updateSameVersion(ctx, p.RecordID, meta)
	}
	return s.createNewVersion(ctx, p, meta)
}

// updateSameVersion replaces the metadata of an already published
// version and republishes it under the same id.
func (s *Service) updateSameVersion(ctx context.Context, recordID string, meta Metadata) (UpdateResult, error) {
	draft, err := s.client.CreateDraft(ctx, recordID)
	if err != nil {
		return UpdateResult{}, err
	}
	if id := draft.ID(); id == "" {
		return UpdateResult{}, fmt.Errorf("archive did not return an id for the draft of %s", recordID)
	}

	if err := s.replaceMetadata(ctx, recordID, meta); err != nil {
		return UpdateResult{}, err
	}
	if _, err := s.client.Publish(ctx, recordID); err != nil {
		return UpdateResult{}, err
	}
	s.log.Info("Updated published version", zap.String("record_id", recordID))

	return UpdateResult{RecordID: recordID, Published: true}, nil
}

// createNewVersion runs the full version transition: new draft, metadata
// replacement, link import, reconciliation, deletions, uploads, optional
// publish. The order is fixed; later steps depend on the link baseline
// established by the earlier ones.
func (s *Service) createNewVersion(ctx context.Context, p UpdateParams, meta Metadata) (UpdateResult, error) {
	draft, err := s.client.CreateVersion(ctx, p.RecordID)
	if err != nil {
		return UpdateResult{}, err
	}
	newID := draft.ID()
	if newID == "" {
		return UpdateResult{}, fmt.Errorf("archive did not return an id for the new version of %s", p.RecordID)
	}
	s.log.Info("Created new version draft",
		zap.String("record_id", p.RecordID),
		zap.String("new_record_id", newID))

	if err := s.replaceMetadata(ctx, newID, meta); err != nil {
		return UpdateResult{}, err
	}

	// The new draft starts without links in the normal case; clear any
	// pre-populated ones so the import below is the only link source.
	if err := s.clearLinks(ctx, newID); err != nil {
		return UpdateResult{}, err
	}
	if err := s.client.ImportFiles(ctx, newID); err != nil {
		return UpdateResult{}, err
	}

	remote, err := reconcile.RemoteInventory(ctx, s.client, newID)
	if err != nil {
		return UpdateResult{}, err
	}
	local, err := reconcile.LocalInventory(p.UploadDir, metadataExcludes(p.MetadataFile, p.UploadDir)...)
	if err != nil {
		return UpdateResult{}, err
	}

	plan := reconcile.BuildPlan(remote, local, reconcile.Options{Force: p.Force})
	s.log.Info("Reconciled draft against upload directory",
		zap.String("record_id", newID),
		zap.Int("remote_links", plan.Summary.RemoteLinks),
		zap.Int("local_files", plan.Summary.LocalFiles),
		zap.Int("deletions", plan.Summary.Deletions),
		zap.Int("imports", plan.Summary.Imports),
		zap.Int("uploads", plan.Summary.Uploads))

	for _, name := range plan.ToDelete {
		if err := s.client.DeleteFile(ctx, newID, name); err != nil {
			return UpdateResult{}, err
		}
	}
	if err := s.uploadFiles(ctx, newID, p.UploadDir, plan.ToUpload); err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{RecordID: newID, Plan: &plan}
	if p.Publish {
		if err := s.publish(ctx, newID); err != nil {
			return UpdateResult{}, err
		}
		result.Published = true
	}
	return result, nil
}

// Get returns the metadata of a published record version.
func (s *Service) Get(ctx context.Context, recordID string) (archive.Document, error) {
	return s.client.GetRecord(ctx, recordID)
}

// List returns the search response for all published records, either
// every version or only the latest per record.
func (s *Service) List(ctx context.Context, allVersions bool) (archive.Document, error) {
	return s.client.ListRecords(ctx, allVersions, defaultListSize)
}

// VersionInfo identifies one latest record version owned by the user.
type VersionInfo struct {
	ID          string `json:"id"`
	IsPublished bool   `json:"is_published"`
}

// LatestVersions returns the ids and publication statuses of the latest
// version of every record owned by the user, drafts included.
func (s *Service) LatestVersions(ctx context.Context) ([]VersionInfo, error) {
	doc, err := s.client.ListUserRecords(ctx, false, defaultListSize)
	if err != nil {
		return nil, err
	}

	hits := doc.Hits()
	versions := make([]VersionInfo, 0, len(hits))
	for _, hit := range hits {
		versions = append(versions, VersionInfo{ID: hit.ID(), IsPublished: hit.IsPublished()})
	}
	return versions, nil
}

// PublishedUserRecordsWithTitle returns the ids of published records
// owned by the user whose title matches exactly.
func (s *Service) PublishedUserRecordsWithTitle(ctx context.Context, title string) ([]string, error) {
	doc, err := s.client.ListUserRecords(ctx, false, defaultListSize)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, hit := range doc.Hits() {
		if hit.IsPublished() && hit.Title() == title {
			ids = append(ids, hit.ID())
		}
	}
	return ids, nil
}

// ExistsAndIsPublished reports whether the user owns a published record
// version with the given id.
func (s *Service) ExistsAndIsPublished(ctx context.Context, recordID string) (bool, error) {
	doc, err := s.client.ListUserRecords(ctx, false, defaultListSize)
	if err != nil {
		return false, err
	}

	for _, hit := range doc.Hits() {
		if hit.ID() == recordID {
			return hit.IsPublished(), nil
		}
	}
	return false, nil
}

// RecordTitle returns the title of a published record version.
func (s *Service) RecordTitle(ctx context.Context, recordID string) (string, error) {
	doc, err := s.client.GetRecord(ctx, recordID)
	if err != nil {
		return "", err
	}
	return doc.Title(), nil
}

// replaceMetadata fetches the draft, swaps its metadata block for the
// provided one and writes it back.
func (s *Service) replaceMetadata(ctx context.Context, recordID string, meta Metadata) error {
	draft, err := s.client.GetDraft(ctx, recordID)
	if err != nil {
		return err
	}
	_, err = s.client.PutDraft(ctx, recordID, ReplaceMetadata(draft, meta))
	return err
}

// clearLinks removes every link currently on the draft.
func (s *Service) clearLinks(ctx context.Context, recordID string) error {
	entries, err := s.client.ListFiles(ctx, recordID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.client.DeleteFile(ctx, recordID, entry.Key); err != nil {
			return err
		}
	}
	return nil
}

// uploadFiles registers the links in one batch, then streams and commits
// each file's content.
func (s *Service) uploadFiles(ctx context.Context, recordID, dir string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if err := s.client.RegisterFiles(ctx, recordID, names); err != nil {
		return err
	}
	for _, name := range names {
		if err := s.uploadOne(ctx, recordID, dir, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) uploadOne(ctx context.Context, recordID, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if err := s.client.UploadFileContent(ctx, recordID, name, f); err != nil {
		return err
	}
	if err := s.client.CommitFile(ctx, recordID, name); err != nil {
		return err
	}
	s.log.Debug("Uploaded file", zap.String("record_id", recordID), zap.String("file", name))
	return nil
}

// publish stamps today's date as the publication date into the draft
// metadata and publishes it. Restamping on every publish call is safe:
// publishing is a terminal transition per version.
func (s *Service) publish(ctx context.Context, recordID string) error {
	draft, err := s.client.GetDraft(ctx, recordID)
	if err != nil {
		return err
	}
	meta, ok := draft["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
	}
	meta["publication_date"] = time.Now().Format("2006-01-02")
	draft["metadata"] = meta
	if _, err := s.client.PutDraft(ctx, recordID, draft); err != nil {
		return err
	}

	if _, err := s.client.Publish(ctx, recordID); err != nil {
		return err
	}
	s.log.Info("Published record", zap.String("record_id", recordID))
	return nil
}

package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"archive-manager/core/labdb"
	"archive-manager/core/utils"
	"archive-manager/feature/record"
)

// Snapshot file names inside the staging directory.
const (
	capabilitiesFile = "capabilities.json"
	requestsFile     = "requests.json"
	resultsFile      = "results_for_requests.json"
)

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("backup aborted")

// Records is the subset of record operations the backup flow drives.
type Records interface {
	Create(ctx context.Context, params record.CreateParams) (record.CreateResult, error)
	Update(ctx context.Context, params record.UpdateParams) (record.UpdateResult, error)
	PublishedUserRecordsWithTitle(ctx context.Context, title string) ([]string, error)
	ExistsAndIsPublished(ctx context.Context, recordID string) (bool, error)
	RecordTitle(ctx context.Context, recordID string) (string, error)
}

// Service copies the lab server database into a published archive record.
type Service struct {
	lab     labdb.Client
	records Records
	log     *zap.Logger
}

// NewService creates a backup service.
func NewService(lab labdb.Client, records Records, log *zap.Logger) *Service {
	return &Service{
		lab:     lab,
		records: records,
		log:     log,
	}
}

// Params controls a single backup run.
type Params struct {
	// RecordID is the published version of the previous backup. Empty for
	// the first backup, which creates a new entry.
	RecordID string
	// MetadataFile is the YAML file holding the record metadata.
	MetadataFile string
	// TempDir is the staging directory for the database snapshots. It is
	// wiped and recreated on every run.
	TempDir string
	// Confirm is consulted before proceeding past a safety check. A nil
	// callback declines every prompt.
	Confirm func(prompt string) bool
}

// Result reports what a backup run did.
type Result struct {
	// RecordID is the id of the published version holding the backup.
	RecordID string
	// Created is true when a new entry was created instead of a new
	// version of an existing one.
	Created bool
	// Snapshots lists the exported snapshot files.
	Snapshots []string
}

// Run exports the lab database and publishes it as an archive record.
//
// With an empty record id a new entry is created, unless a published
// record with the same title already exists and the user declines the
// prompt. With a record id the matching entry gets a new published
// version holding exactly the fresh snapshot files.
func (s *Service) Run(ctx context.Context, params Params) (Result, error) {
	snapshots, err := s.exportSnapshots(ctx, params.TempDir)
	if err != nil {
		return Result{}, err
	}

	meta, err := record.LoadMetadata(params.MetadataFile)
	if err != nil {
		return Result{}, err
	}
	title := meta.Title()
	stamp := additionalDescription(time.Now())

	if params.RecordID == "" {
		return s.createEntry(ctx, params, title, stamp, snapshots)
	}
	return s.updateEntry(ctx, params, title, stamp, snapshots)
}

func (s *Service) createEntry(ctx context.Context, params Params, title, stamp string, snapshots []string) (Result, error) {
	// An existing published record with the same title suggests a missing
	// --record-id rather than an intentional first backup.
	ids, err := s.records.PublishedUserRecordsWithTitle(ctx, title)
	if err != nil {
		return Result{}, err
	}
	if len(ids) > 0 {
		prompt := fmt.Sprintf(
			"You already own a published record with the same title (record %s), but no record id was provided. Create a new entry anyway?",
			ids[0])
		if !s.confirmed(params, prompt) {
			return Result{}, ErrAborted
		}
	}

	res, err := s.records.Create(ctx, record.CreateParams{
		MetadataFile:          params.MetadataFile,
		UploadDir:             params.TempDir,
		AdditionalDescription: stamp,
		Publish:               true,
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("created backup entry",
		zap.String("record_id", res.RecordID),
		zap.Int("snapshots", len(snapshots)))

	return Result{RecordID: res.RecordID, Created: true, Snapshots: snapshots}, nil
}

func (s *Service) updateEntry(ctx context.Context, params Params, title, stamp string, snapshots []string) (Result, error) {
	published, err := s.records.ExistsAndIsPublished(ctx, params.RecordID)
	if err != nil {
		return Result{}, err
	}
	if !published {
		return Result{}, fmt.Errorf("invalid record id %s: you do not own a published record with this id", params.RecordID)
	}

	recordTitle, err := s.records.RecordTitle(ctx, params.RecordID)
	if err != nil {
		return Result{}, err
	}
	if title != recordTitle {
		prompt := fmt.Sprintf(
			"The title in the metadata file (%q) does not match the title of record %s (%q). Continue anyway?",
			title, params.RecordID, recordTitle)
		if !s.confirmed(params, prompt) {
			return Result{}, ErrAborted
		}
	}

	res, err := s.records.Update(ctx, record.UpdateParams{
		RecordID:              params.RecordID,
		NewVersion:            true,
		MetadataFile:          params.MetadataFile,
		UploadDir:             params.TempDir,
		AdditionalDescription: stamp,
		Force:                 true,
		Publish:               true,
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("published new backup version",
		zap.String("record_id", res.RecordID),
		zap.Int("snapshots", len(snapshots)))

	return Result{RecordID: res.RecordID, Snapshots: snapshots}, nil
}

// exportSnapshots wipes the staging directory and fills it with fresh
// JSON snapshots of the lab database.
func (s *Service) exportSnapshots(ctx context.Context, dir string) ([]string, error) {
	if err := utils.RecreateDir(dir); err != nil {
		return nil, err
	}

	token, err := s.lab.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate against the lab server: %w", err)
	}

	exports := []struct {
		name  string
		fetch func(ctx context.Context, token string) (any, error)
	}{
		{capabilitiesFile, s.lab.Capabilities},
		{requestsFile, s.lab.AllRequests},
		{resultsFile, s.lab.ResultsForRequests},
	}

	paths := make([]string, 0, len(exports))
	for _, export := range exports {
		payload, err := export.fetch(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", export.name, err)
		}
		path := filepath.Join(dir, export.name)
		if err := utils.WriteJSON(path, payload); err != nil {
			return nil, err
		}
		s.log.Debug("exported lab database snapshot", zap.String("file", path))
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Service) confirmed(params Params, prompt string) bool {
	return params.Confirm != nil && params.Confirm(prompt)
}

// additionalDescription returns the provenance sentence appended to the
// record description. The leading space joins it to the existing text.
func additionalDescription(now time.Time) string {
	return fmt.Sprintf(" The back-up was performed on %s at %s.",
		now.Format("January 2, 2006"), now.Format("15:04"))
}

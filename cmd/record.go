package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"archive-manager/core/archive"
	"archive-manager/core/config"
	"archive-manager/core/logger"
	"archive-manager/feature/record"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the record subcommands
	recordID       string
	updateVersion  bool
	forceSync      bool
	publishRecord  bool
	metadataFile   string
	dataFiles      string
	outputFile     string
	listOutputFile string
	allVersions    bool
)

// recordCmd is the parent command for single record operations.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage single records on the archive",
	Long:  `Create, update, inspect and list records on the configured archive.`,
}

var recordCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record and optionally publish it",
	Long: `Create a record on the archive from a metadata file and a directory of
data files, and optionally publish it.`,
	RunE: runRecordCreate,
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a published record or create a new version",
	Long: `Update a published version of an archive entry, or create a new version
and optionally publish it. When updating a published version in place,
only the metadata (title, list of authors, etc) can be modified.

For a new version the file links are reconciled against the data
directory: links of unchanged files are imported from the published
version, changed files are re-uploaded, and new files are added.

Examples:
  # Update the metadata of the published version pxrf9-zfh45
  record update --record-id pxrf9-zfh45 --update-version

  # Create a new version, keep links of locally absent files
  record update --record-id pxrf9-zfh45

  # Create a new version, prune links of locally absent files, publish
  record update --record-id pxrf9-zfh45 --force --publish`,
	RunE: runRecordUpdate,
}

var recordGetMetadataCmd = &cobra.Command{
	Use:   "get-metadata",
	Short: "Export the metadata of a published record version",
	Long: `Get the metadata of a published version of an archive entry and save it
to a JSON file.`,
	RunE: runRecordGetMetadata,
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the published records on the archive",
	Long: `List the published records on the archive, either only the latest
version of each entry or every published version.`,
	RunE: runRecordList,
}

func init() {
	recordCmd.AddCommand(recordCreateCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordGetMetadataCmd)
	recordCmd.AddCommand(recordListCmd)

	recordCreateCmd.Flags().StringVar(&metadataFile, "metadata-file", "data/input/metadata.yaml", "Path to the record metadata YAML file")
	recordCreateCmd.Flags().StringVar(&dataFiles, "data-files", "data/input/upload", "Directory with the data files to upload and link")
	recordCreateCmd.Flags().BoolVar(&publishRecord, "publish", false, "Publish the created record")

	recordUpdateCmd.Flags().StringVar(&recordID, "record-id", "", "Id of the published version (e.g., \"pxrf9-zfh45\")")
	recordUpdateCmd.Flags().BoolVar(&updateVersion, "update-version", false, "Update the metadata of the published version in place instead of creating a new version")
	recordUpdateCmd.Flags().StringVar(&metadataFile, "metadata-file", "data/input/metadata.yaml", "Path to the record metadata YAML file")
	recordUpdateCmd.Flags().StringVar(&dataFiles, "data-files", "data/input/upload", "Directory with the data files for the new version")
	recordUpdateCmd.Flags().BoolVar(&forceSync, "force", false, "Delete file links whose files are absent from the data directory")
	recordUpdateCmd.Flags().BoolVar(&publishRecord, "publish", false, "Publish the new version")
	_ = recordUpdateCmd.MarkFlagRequired("record-id")

	recordGetMetadataCmd.Flags().StringVar(&recordID, "record-id", "", "Id of the published version (e.g., \"pxrf9-zfh45\")")
	recordGetMetadataCmd.Flags().StringVar(&outputFile, "output-file", "data/output/metadata.json", "File the record metadata is exported to")
	_ = recordGetMetadataCmd.MarkFlagRequired("record-id")

	recordListCmd.Flags().BoolVar(&allVersions, "all-versions", false, "List every published version instead of only the latest per entry")
	recordListCmd.Flags().StringVar(&listOutputFile, "output-file", "", "Export the full search response to this file instead of printing a summary")

	RootCmd.AddCommand(recordCmd)
}

func runRecordCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := record.NewService(archive.NewClient(cfg.Archive), logg)

	logg.Info("Creating record",
		zap.String("metadata_file", metadataFile),
		zap.String("data_files", dataFiles))

	res, err := svc.Create(cmd.Context(), record.CreateParams{
		MetadataFile: metadataFile,
		UploadDir:    dataFiles,
		Publish:      publishRecord,
	})
	if err != nil {
		return explainArchiveError(err, "")
	}

	fmt.Println("A new entry was created.")
	if res.Published {
		fmt.Println("The entry was published.")
		fmt.Printf("Please visit %s.\n", cfg.Archive.RecordURL(res.RecordID))
		return nil
	}
	fmt.Printf("Please visit %s.\n", cfg.Archive.UploadURL(res.RecordID))
	return nil
}

func runRecordUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := record.NewService(archive.NewClient(cfg.Archive), logg)

	logg.Info("Updating record",
		zap.String("record_id", recordID),
		zap.Bool("new_version", !updateVersion))

	res, err := svc.Update(cmd.Context(), record.UpdateParams{
		RecordID:     recordID,
		NewVersion:   !updateVersion,
		MetadataFile: metadataFile,
		UploadDir:    dataFiles,
		Force:        forceSync,
		Publish:      publishRecord,
	})
	if err != nil {
		return explainArchiveError(err, recordID)
	}

	if updateVersion {
		fmt.Printf("The metadata of the version %s was updated.\n", res.RecordID)
		fmt.Printf("Please visit %s.\n", cfg.Archive.RecordURL(res.RecordID))
		return nil
	}

	fmt.Println("A new version was created.")
	if res.Plan != nil {
		s := res.Plan.Summary
		fmt.Printf("File links: %d deleted, %d imported, %d uploaded.\n",
			s.Deletions, s.Imports, s.Uploads)
	}
	if res.Published {
		fmt.Println("The new version was published.")
		fmt.Printf("Please visit %s.\n", cfg.Archive.RecordURL(res.RecordID))
		return nil
	}
	fmt.Printf("Please visit %s.\n", cfg.Archive.UploadURL(res.RecordID))
	return nil
}

func runRecordGetMetadata(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := record.NewService(archive.NewClient(cfg.Archive), logg)

	doc, err := svc.Get(cmd.Context(), recordID)
	if err != nil {
		return explainArchiveError(err, recordID)
	}
	if err := record.Export(outputFile, doc); err != nil {
		return err
	}

	fmt.Printf("The metadata of the entry version %s was obtained and saved in %s.\n", recordID, outputFile)
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := record.NewService(archive.NewClient(cfg.Archive), logg)

	doc, err := svc.List(cmd.Context(), allVersions)
	if err != nil {
		return explainArchiveError(err, "")
	}

	if listOutputFile != "" {
		if err := record.Export(listOutputFile, doc); err != nil {
			return err
		}
		fmt.Printf("The metadata of the published records was saved in %s.\n", listOutputFile)
		return nil
	}

	hits := doc.Hits()
	for _, hit := range hits {
		fmt.Printf("%-12s  %s\n", hit.ID(), hit.Title())
	}
	fmt.Printf("%d published records.\n", len(hits))
	return nil
}

// explainArchiveError appends a hint for the usual failure causes so the
// console error points at the right piece of configuration.
func explainArchiveError(err error, recordID string) error {
	if err == nil {
		return nil
	}
	if archive.IsStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("%w (check the configured archive token)", err)
	}
	if recordID != "" && archive.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%w (check the provided record id %s)", err, recordID)
	}
	var netErr *url.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w (check the configured archive domain and port)", err)
	}
	return err
}

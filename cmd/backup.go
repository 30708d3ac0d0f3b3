package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"archive-manager/core/archive"
	"archive-manager/core/config"
	"archive-manager/core/labdb"
	"archive-manager/core/logger"
	"archive-manager/feature/backup"
	"archive-manager/feature/record"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the backup command
	backupRecordID     string
	backupMetadataFile string
	backupTempDir      string
	yesBackup          bool
)

// backupCmd copies the lab server database into a published archive record.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the lab server database to the archive",
	Long: `Perform a partial back-up of the database of a lab automation server to
the archive. The capabilities, requests and results for requests are
exported to JSON files and published as a new entry, or as a new version
of the entry of the previous back-up.

Examples:
  # First back-up: create and publish a new entry
  backup

  # Subsequent back-ups: new version of the previous back-up's entry
  backup --record-id pxrf9-zfh45

  # Non-interactive (accept all safety prompts)
  backup --record-id pxrf9-zfh45 --yes`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupRecordID, "record-id", "", "Id of the published version of the previous back-up. Leave empty for the first back-up")
	backupCmd.Flags().StringVar(&backupMetadataFile, "metadata-file", "data/input/metadata.yaml", "Path to the record metadata YAML file")
	backupCmd.Flags().StringVar(&backupTempDir, "temp-dir", "data/temp", "Staging directory for the database snapshots. Wiped on every run")
	backupCmd.Flags().BoolVar(&yesBackup, "yes", false, "Auto-confirm safety prompts (non-interactive)")

	RootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	records := record.NewService(archive.NewClient(cfg.Archive), logg)
	svc := backup.NewService(labdb.NewClient(cfg.LabDB), records, logg)

	logg.Info("Starting back-up",
		zap.String("record_id", backupRecordID),
		zap.String("temp_dir", backupTempDir))

	res, err := svc.Run(cmd.Context(), backup.Params{
		RecordID:     backupRecordID,
		MetadataFile: backupMetadataFile,
		TempDir:      backupTempDir,
		Confirm:      confirmBackupPrompt,
	})
	if errors.Is(err, backup.ErrAborted) {
		fmt.Println("Aborted.")
		return nil
	}
	if err != nil {
		return explainBackupError(err)
	}

	if res.Created {
		fmt.Println("A new entry was created and published.")
	} else {
		fmt.Println("A new version was created and published.")
	}
	fmt.Printf("Please visit %s.\n", cfg.Archive.RecordURL(res.RecordID))
	return nil
}

// confirmBackupPrompt asks the user to confirm a safety prompt, or uses
// the --yes flag.
func confirmBackupPrompt(prompt string) bool {
	if yesBackup {
		fmt.Println("✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %s\nType 'yes' to confirm: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

// explainBackupError appends a hint for the usual failure causes. Both
// remote services are involved, so the hints name them explicitly.
func explainBackupError(err error) error {
	if err == nil {
		return nil
	}
	if archive.IsStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("%w (check the configured archive token and lab server credentials)", err)
	}
	var netErr *url.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w (check the configured archive and lab server hosts and ports)", err)
	}
	return err
}

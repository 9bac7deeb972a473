package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/service"
)

var (
	backupKind       string
	backupName       string
	backupNoCompress bool
	backupScheduleID int64
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup",
	Long:  "Create a database, media or full backup and wait for it to finish",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.BackupKind(backupKind)
		if kind != domain.BackupKindDatabase && kind != domain.BackupKindMedia && kind != domain.BackupKindFull {
			return fmt.Errorf("invalid backup kind: %s (must be database, media or full)", backupKind)
		}

		services, err := initServices()
		if err != nil {
			return err
		}
		defer services.Close()

		var scheduleIDPtr *int64
		if backupScheduleID > 0 {
			scheduleIDPtr = &backupScheduleID
		}

		backup, err := services.BackupService.RunBackup(cmd.Context(), service.CreateBackupOptions{
			Name:       backupName,
			Kind:       kind,
			Compress:   !backupNoCompress,
			ScheduleID: scheduleIDPtr,
		})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Backup completed\n")
		fmt.Printf("Backup ID: %s\n", backup.ID)
		if backup.DatabaseFile != nil {
			fmt.Printf("Database file: %s (%d bytes)\n", *backup.DatabaseFile, *backup.DatabaseSize)
		}
		if backup.MediaFile != nil {
			fmt.Printf("Media file: %s (%d bytes)\n", *backup.MediaFile, *backup.MediaSize)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringVar(&backupKind, "kind", "full", "Backup kind: database, media or full")
	backupCmd.Flags().StringVar(&backupName, "name", "", "Optional backup name")
	backupCmd.Flags().BoolVar(&backupNoCompress, "no-compress", false, "Skip gzip compression of the database dump")
	backupCmd.Flags().Int64Var(&backupScheduleID, "schedule-id", 0, "Schedule ID (for cron jobs)")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmartens/shopvault/internal/core/service"
)

var (
	cleanupRetentionDays int
	cleanupDryRun        bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run backup cleanup",
	Long:  "Delete completed backups older than the retention window (typically used by cron)",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices()
		if err != nil {
			return err
		}
		defer services.Close()

		opts := service.CleanupOptions{DryRun: cleanupDryRun}
		if cmd.Flags().Changed("retention-days") {
			opts.RetentionDays = &cleanupRetentionDays
		}

		result, err := services.CleanupService.Run(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		if result.RetentionDays == 0 {
			fmt.Println("Retention is disabled, nothing to clean up")
			return nil
		}

		verb := "Deleted"
		if result.DryRun {
			verb = "Would delete"
		}
		fmt.Printf("%s %d backup(s), freeing %d bytes\n", verb, len(result.DeletedIDs), result.BytesFreed)
		for _, id := range result.DeletedIDs {
			fmt.Printf("  %s\n", id)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupRetentionDays, "retention-days", 0, "Override the configured retention window")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Report what would be deleted without deleting")
}

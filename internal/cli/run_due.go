package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmartens/shopvault/internal/core/service"
)

var (
	runDueForce  bool
	runDueDryRun bool
)

var runDueCmd = &cobra.Command{
	Use:   "run-due",
	Short: "Run due scheduled backups",
	Long:  "Trigger every enabled schedule whose next run time has passed (typically used by cron)",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices()
		if err != nil {
			return err
		}
		defer services.Close()

		result, err := services.ScheduleService.RunDue(cmd.Context(), service.RunDueOptions{
			Force:  runDueForce,
			DryRun: runDueDryRun,
		})
		if err != nil {
			return fmt.Errorf("failed to run due schedules: %w", err)
		}

		if len(result.Triggered) == 0 {
			fmt.Println("No schedules due")
			return nil
		}

		for _, sched := range result.Triggered {
			if runDueDryRun {
				fmt.Printf("Would run schedule %d (%s)\n", sched.ID, sched.Name)
			} else {
				fmt.Printf("Ran schedule %d (%s)\n", sched.ID, sched.Name)
			}
		}
		for _, backup := range result.Backups {
			fmt.Printf("Backup %s: %s\n", backup.ID, backup.Status)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runDueCmd)
	runDueCmd.Flags().BoolVar(&runDueForce, "force", false, "Trigger every enabled schedule regardless of due time")
	runDueCmd.Flags().BoolVar(&runDueDryRun, "dry-run", false, "Report due schedules without running backups")
}

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jmartens/shopvault/internal/api"
	"github.com/jmartens/shopvault/internal/scheduler"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  "Start the REST API server and the in-process backup scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices()
		if err != nil {
			return err
		}
		defer services.Close()

		// Initialize Gin server
		server := api.NewServer(
			cfg,
			services.AuthService,
			services.Runner,
			services.BackupService,
			services.RestoreService,
			services.ScheduleService,
			services.SettingsService,
			services.CleanupService,
			services.ClientRepo,
			services.ScheduleRepo,
		)

		// Start the cron scheduler for enabled backup schedules. Schedule
		// mutations through the API rebuild the running entry set.
		sched := scheduler.New(services.ScheduleRepo, services.ScheduleService)
		services.ScheduleService.OnChange(func() {
			if err := sched.Rebuild(context.Background()); err != nil {
				logrus.WithError(err).Error("failed to rebuild scheduler")
			}
		})
		if err := sched.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()

		// Start server in goroutine
		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()

		// Wait for interrupt signal or server error
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		fmt.Println("Server is ready. Press Ctrl+C to stop.")

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-sigChan:
			fmt.Println("\nShutting down gracefully...")
		}

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
	"github.com/jmartens/shopvault/internal/engine"
	"github.com/jmartens/shopvault/internal/infrastructure/sqlite"
	"github.com/jmartens/shopvault/pkg/config"
	"github.com/jmartens/shopvault/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shopvault",
	Short: "ShopVault - Backup and restore management for shop deployments",
	Long: `ShopVault manages backups and restores for a shop deployment: the
database plus the uploaded media tree.

It provides:
- Database dumps and media archives, separately or combined
- Scheduled backups with daily, weekly and monthly frequencies
- Retention policy cleanup
- Restore with pre-restore safety snapshots
- REST API for remote management
- OAuth2 authentication`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/shopvault/config.yml)")
}

// initServices initializes all services
func initServices() (*Services, error) {
	// Initialize records database
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	userRepo := sqlite.NewUserRepository(db)
	clientRepo := sqlite.NewClientRepository(db)
	authCodeRepo := sqlite.NewAuthCodeRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)
	restoreRepo := sqlite.NewRestoreRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db, cfg.BackupDir)
	jobRepo := sqlite.NewJobRepository(db)

	// Select the dump engine for the configured database
	dumper, err := engine.ForEngine(cfg.DBEngine)
	if err != nil {
		db.Close()
		return nil, err
	}

	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = service.NewSMTPNotifier(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		notifier = service.NewNopNotifier()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, clientRepo, authCodeRepo, cfg.JWTSecretKey, cfg.JWTAlgorithm)
	runner := service.NewJobRunner(jobRepo)
	backupService := service.NewBackupService(backupRepo, settingsRepo, runner, dumper, cfg.MediaDir, notifier)
	restoreService := service.NewRestoreService(restoreRepo, backupRepo, settingsRepo, backupService, runner, dumper, cfg.MediaDir)
	scheduleService := service.NewScheduleService(scheduleRepo, backupRepo, backupService)
	settingsService := service.NewSettingsService(settingsRepo)
	cleanupService := service.NewCleanupService(backupRepo, scheduleRepo, settingsRepo)

	return &Services{
		DB:              db,
		UserRepo:        userRepo,
		ClientRepo:      clientRepo,
		ScheduleRepo:    scheduleRepo,
		BackupRepo:      backupRepo,
		Runner:          runner,
		AuthService:     authService,
		BackupService:   backupService,
		RestoreService:  restoreService,
		ScheduleService: scheduleService,
		SettingsService: settingsService,
		CleanupService:  cleanupService,
	}, nil
}

// Services holds all initialized services
type Services struct {
	DB              *sqlite.DB
	UserRepo        repository.UserRepository
	ClientRepo      repository.ClientRepository
	ScheduleRepo    repository.ScheduleRepository
	BackupRepo      repository.BackupRepository
	Runner          *service.JobRunner
	AuthService     *service.AuthService
	BackupService   *service.BackupService
	RestoreService  *service.RestoreService
	ScheduleService *service.ScheduleService
	SettingsService *service.SettingsService
	CleanupService  *service.CleanupService
}

// Close waits for running jobs and closes all resources
func (s *Services) Close() {
	if s.Runner != nil {
		s.Runner.Wait()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

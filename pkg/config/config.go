package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	BackupDir    string `mapstructure:"backup_dir"`
	MediaDir     string `mapstructure:"media_dir"`
	DBEngine     string `mapstructure:"db_engine"` // "mysql" or "sqlite"
	JWTSecretKey string `mapstructure:"jwt_secret_key"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	// Optional JWT settings
	JWTAlgorithm string `mapstructure:"jwt_algorithm"`

	// Optional SMTP settings for completion notifications
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`

	// Static paths
	ConfigPath string
	DBPath     string `mapstructure:"db_path"`
	UploadDir  string `mapstructure:"upload_dir"`
}

const (
	DefaultConfigPath   = "/etc/shopvault/config.yml"
	DefaultDBPath       = "/var/lib/shopvault/records.sqlite3"
	DefaultUploadDir    = "/var/lib/shopvault/uploads"
	DefaultAPIHost      = "0.0.0.0"
	DefaultAPIPort      = 8343
	DefaultLogLevel     = "info"
	DefaultJWTAlgorithm = "HS256"
	DefaultSMTPPort     = 25
)

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("api_host", DefaultAPIHost)
	viper.SetDefault("api_port", DefaultAPIPort)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	viper.SetDefault("db_path", DefaultDBPath)
	viper.SetDefault("upload_dir", DefaultUploadDir)
	viper.SetDefault("smtp_port", DefaultSMTPPort)

	// Allow environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHOPVAULT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BackupDir == "" {
		return fmt.Errorf("backup_dir is required")
	}

	if c.MediaDir == "" {
		return fmt.Errorf("media_dir is required")
	}

	if c.DBEngine == "" {
		return fmt.Errorf("db_engine is required")
	}

	if c.DBEngine != "mysql" && c.DBEngine != "sqlite" {
		return fmt.Errorf("db_engine must be 'mysql' or 'sqlite'")
	}

	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}

	// Validate backup directory exists
	if _, err := os.Stat(c.BackupDir); os.IsNotExist(err) {
		return fmt.Errorf("backup_dir does not exist: %s", c.BackupDir)
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return fmt.Errorf("smtp_from is required when smtp_host is set")
	}

	return nil
}

func (c *Config) IsDevMode() bool {
	return os.Getenv("SHOPVAULT_DEV_MODE") == "1"
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "ledger",
	Short:        "Personal Ledger",
	Long:         `Track income and outcome transactions by category, with balance checks and batch import.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the process logger.
func bootstrap() (*internal.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
	return cfg, nil
}

func loadConfig(path string) (*internal.Config, error) {
	_ = godotenv.Load()

	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults mirrors LoadConfigFromEnv so a partial config.yml still validates.
// Registering every key also lets AutomaticEnv override keys absent from the file.
func setDefaults(v *viper.Viper) {
	d := internal.LoadConfigFromEnv()

	v.SetDefault("http_server.port", d.Server.Port)
	v.SetDefault("http_server.base_url", d.Server.BaseURL)
	v.SetDefault("http_server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("http_server.openapi_path", d.Server.OpenAPIPath)
	v.SetDefault("http_server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("http_server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.source", d.Database.Source)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime)

	v.SetDefault("security.enabled", d.Security.Enabled)
	v.SetDefault("security.owner_username", d.Security.OwnerUsername)
	v.SetDefault("security.owner_password_hash", d.Security.OwnerPasswordHash)
	v.SetDefault("security.jwt_secret", d.Security.JWTSecret)
	v.SetDefault("security.access_token_duration", d.Security.AccessTokenDuration)
	v.SetDefault("security.bcrypt_cost", d.Security.BCryptCost)

	v.SetDefault("upload.directory", d.Upload.Directory)
	v.SetDefault("upload.max_size_bytes", d.Upload.MaxSizeBytes)

	v.SetDefault("import.inbox_directory", d.Import.InboxDirectory)
	v.SetDefault("import.poll_interval", d.Import.PollInterval)
	v.SetDefault("import.max_workers", d.Import.MaxWorkers)
	v.SetDefault("import.job_queue_size", d.Import.JobQueueSize)

	v.SetDefault("events.amqp_url", d.Events.AMQPURL)
	v.SetDefault("events.exchange", d.Events.Exchange)

	v.SetDefault("observability.logging.level", d.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", d.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-dir", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile reads a single YAML file; used by the CLI and tests.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills sheet credentials from the variables the
// spreadsheet tooling has always used.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Sheets.SpreadsheetID == "" {
		for _, name := range []string{"GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEET_ID"} {
			if val := os.Getenv(name); val != "" {
				cfg.Sheets.SpreadsheetID = val
				break
			}
		}
	}
	if cfg.Sheets.APIKey == "" {
		if val := os.Getenv("GOOGLE_SHEETS_API_KEY"); val != "" {
			cfg.Sheets.APIKey = val
		}
	}
	if cfg.Sheets.CredentialsJSON == "" {
		if val := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"); val != "" {
			cfg.Sheets.CredentialsJSON = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "appointment-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Sheets.Source == "" {
		cfg.Sheets.Source = "csv"
	}
	if cfg.Sheets.CSVBaseURL == "" {
		cfg.Sheets.CSVBaseURL = "https://docs.google.com/spreadsheets/d"
	}
	if cfg.Sheets.Timeout == 0 {
		cfg.Sheets.Timeout = 15000
	}
	if cfg.Sheets.Tabs.Input == "" {
		cfg.Sheets.Tabs.Input = "입력"
	}
	if cfg.Sheets.Tabs.Contacts == "" {
		cfg.Sheets.Tabs.Contacts = "위촉문자"
	}
	if cfg.Sheets.Tabs.Settings == "" {
		cfg.Sheets.Tabs.Settings = "설정"
	}
	if cfg.Sheets.MirrorTable == "" {
		cfg.Sheets.MirrorTable = "sheet_cells"
	}

	if cfg.Cache.Key == "" {
		cfg.Cache.Key = "appointment:sheet:snapshot"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.EventsIndex == "" {
		cfg.Database.Elasticsearch.EventsIndex = "appointment-calendar-events"
	}

	if cfg.Schedule.ConflictPolicy == "" {
		cfg.Schedule.ConflictPolicy = "last-wins"
	}
	if cfg.Schedule.AttachmentMode == "" {
		cfg.Schedule.AttachmentMode = "appointment-marker"
	}

	if cfg.Feasibility.Timezone == "" {
		cfg.Feasibility.Timezone = "Asia/Seoul"
	}
	if cfg.Feasibility.ClearanceLeadDays == 0 {
		cfg.Feasibility.ClearanceLeadDays = 11
	}
	if cfg.Feasibility.TrainingLeadDays == 0 {
		cfg.Feasibility.TrainingLeadDays = 7
	}
	if cfg.Feasibility.SubmissionFallbackDays == 0 {
		cfg.Feasibility.SubmissionFallbackDays = 3
	}
	if cfg.Feasibility.NoticeMailLeadDays == 0 {
		cfg.Feasibility.NoticeMailLeadDays = 2
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-northeast-2"
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.Mode == "" {
		cfg.HTTP.Mode = "release"
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Sheets.Source {
	case "csv", "api":
		if cfg.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets.spreadsheet_id is required for source %q", cfg.Sheets.Source)
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for source \"postgres\"")
		}
	default:
		return fmt.Errorf("sheets.source must be one of csv, api, postgres (got %q)", cfg.Sheets.Source)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}

	switch cfg.Schedule.ConflictPolicy {
	case "last-wins", "first-wins":
	default:
		return fmt.Errorf("schedule.conflict_policy must be last-wins or first-wins (got %q)", cfg.Schedule.ConflictPolicy)
	}
	switch cfg.Schedule.AttachmentMode {
	case "appointment-marker", "organization":
	default:
		return fmt.Errorf("schedule.attachment_mode must be appointment-marker or organization (got %q)", cfg.Schedule.AttachmentMode)
	}

	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

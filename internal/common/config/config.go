package config

import "fmt"

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Sheets        SheetsConfig            `mapstructure:"sheets"`
	Cache         CacheConfig             `mapstructure:"cache"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Schedule      ScheduleConfig          `mapstructure:"schedule"`
	Feasibility   FeasibilityConfig       `mapstructure:"feasibility"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// SheetsConfig selects where the raw rows come from.
type SheetsConfig struct {
	Source          string    `mapstructure:"source"` // csv | api | postgres
	SpreadsheetID   string    `mapstructure:"spreadsheet_id"`
	APIKey          string    `mapstructure:"api_key"`
	CredentialsJSON string    `mapstructure:"credentials_json"`
	CSVBaseURL      string    `mapstructure:"csv_base_url"`
	Timeout         int       `mapstructure:"timeout"` // milliseconds
	Tabs            TabConfig `mapstructure:"tabs"`
	MirrorTable     string    `mapstructure:"mirror_table"`
}

type TabConfig struct {
	Input    string `mapstructure:"input"`
	Contacts string `mapstructure:"contacts"`
	Settings string `mapstructure:"settings"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Key     string `mapstructure:"key"`
	TTL     int    `mapstructure:"ttl"` // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	EventsIndex string   `mapstructure:"events_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScheduleConfig holds the marker vocabulary used to classify sheet rows.
type ScheduleConfig struct {
	InternalMarker        string   `mapstructure:"internal_marker"`
	SessionMarkers        []string `mapstructure:"session_markers"`
	AppointmentMarker     string   `mapstructure:"appointment_marker"`
	OpenMarker            string   `mapstructure:"open_marker"`
	DeadlineMarker        string   `mapstructure:"deadline_marker"`
	RegistrationPattern   string   `mapstructure:"registration_pattern"`
	ConflictPolicy        string   `mapstructure:"conflict_policy"` // last-wins | first-wins
	AttachmentMode        string   `mapstructure:"attachment_mode"` // appointment-marker | organization
	SettingsGuidanceKey   string   `mapstructure:"settings_guidance_key"`
	SettingsChecklistKey  string   `mapstructure:"settings_checklist_key"`
	SettingsRecipientsKey string   `mapstructure:"settings_recipients_key"`
}

type FeasibilityConfig struct {
	Timezone               string `mapstructure:"timezone"`
	ClearanceLeadDays      int    `mapstructure:"clearance_lead_days"`
	TrainingLeadDays       int    `mapstructure:"training_lead_days"`
	SubmissionFallbackDays int    `mapstructure:"submission_fallback_days"`
	NoticeMailLeadDays     int    `mapstructure:"notice_mail_lead_days"`
}

type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		Subject   string `mapstructure:"subject"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type HTTPConfig struct {
	Address      string   `mapstructure:"address"`
	Mode         string   `mapstructure:"mode"` // gin mode: debug | release | test
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// TracingConfig points span export at a Jaeger collector. Spans are still
// sampled for in-process use when Endpoint is empty.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"` // e.g. http://localhost:14268/api/traces
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

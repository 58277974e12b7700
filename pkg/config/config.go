package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server    ServerConfig    `envconfig:"SERVER"`
	LLM       LLMConfig       `envconfig:"LLM"`
	Drive     DriveConfig     `envconfig:"DRIVE"`
	Batch     BatchConfig     `envconfig:"BATCH"`
	Warehouse WarehouseConfig `envconfig:"WAREHOUSE"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Storage   StorageConfig   `envconfig:"STORAGE"`
}

// ServerConfig holds HTTP API configuration. HOST and PORT are accepted without prefix.
// An empty APIToken leaves the /v1 routes open.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	APIToken        string        `split_words:"true"`
}

// LLMConfig holds the completion API settings. The unprefixed names
// (API_KEY, BASE_URL, MODEL) are accepted as fallbacks. APIKey defaults to a
// placeholder for keyless OpenAI-compatible proxies.
type LLMConfig struct {
	BaseURL    string        `envconfig:"BASE_URL" default:"https://api.openai.com/v1" validate:"required,url"`
	Model      string        `envconfig:"MODEL" default:"gpt-4o-mini" validate:"required"`
	APIKey     string        `envconfig:"API_KEY" default:"dummykey" validate:"required"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	Verbose    bool          `envconfig:"VERBOSE" default:"false"`
	PromptPath string        `envconfig:"PROMPT_PATH" default:"prompts/system_prompt.txt" validate:"required"`
}

// DriveConfig holds Google Drive / Docs settings. The service account JSON is
// also accepted as GOOGLE_SERVICE_ACCOUNT_JSON.
type DriveConfig struct {
	CredentialsJSON    string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	CredentialsFile    string `envconfig:"CREDENTIALS_FILE"`
	FolderURL          string `envconfig:"FOLDER_URL"`
	ProcessedFolderURL string `envconfig:"PROCESSED_FOLDER_URL"`
	DocumentPattern    string `envconfig:"DOCUMENT_PATTERN" default:"Notas" validate:"required"`
	SectionTitle       string `envconfig:"SECTION_TITLE" default:"Análisis - Farmer" validate:"required"`
}

// BatchConfig holds per-document processing settings
type BatchConfig struct {
	MinTranscriptChars int           `split_words:"true" default:"100" validate:"gte=0"`
	MaxRetries         uint64        `split_words:"true" default:"2"`
	RetryInterval      time.Duration `split_words:"true" default:"2s"`
	DocumentTimeout    time.Duration `split_words:"true" default:"5m" validate:"gt=0"`
}

// WarehouseConfig holds database configuration for persisted analyses
type WarehouseConfig struct {
	Enabled     bool   `split_words:"true" default:"false"`
	Host        string `split_words:"true" default:"localhost" validate:"required_if=Enabled true"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true"`
	Name        string `split_words:"true" default:"meeting_analyzer" validate:"required_if=Enabled true"`
	SSLMode     string `split_words:"true" default:"disable"`
	MaxConns    int    `split_words:"true" default:"10"`
	MinConns    int    `split_words:"true" default:"2"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds the processed-document ledger configuration.
// An empty Addr selects the in-memory ledger.
type RedisConfig struct {
	Addr     string        `split_words:"true"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	TTL      time.Duration `split_words:"true" default:"720h"`
}

// StorageConfig holds the raw output archive configuration.
// An empty Endpoint disables archiving.
type StorageConfig struct {
	Endpoint        string `split_words:"true"`
	AccessKeyID     string `split_words:"true"`
	SecretAccessKey string `split_words:"true"`
	BucketName      string `split_words:"true" default:"meeting-analyzer"`
	UseSSL          bool   `split_words:"true" default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetDatabaseDSN returns the warehouse connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Warehouse.Host,
		c.Warehouse.Port,
		c.Warehouse.User,
		c.Warehouse.Password,
		c.Warehouse.Name,
		c.Warehouse.SSLMode,
	)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultStoreURL is the Apps Script web app that fronts the office spreadsheet.
	DefaultStoreURL = "https://script.google.com/macros/s/AKfycbytp0BA1x2PnjcFhunbgWEoMxZmCobyZHNzq3Mxabr41RScNAH-nYIlBd-OySWv5dcx/exec"
	// DefaultDraftingEndpoint is the chat-completion endpoint used for legal drafts.
	DefaultDraftingEndpoint = "https://api.deepseek.com/v1/chat/completions"
)

type Config struct {
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Sessions live in an in-memory SQLite database; nothing survives a restart.
	SessionDSN string        `envconfig:"SESSION_DSN" default:"file:sessions?mode=memory&cache=shared"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	// External store (spreadsheet web app)
	StoreURL      string        `envconfig:"GAS_WEB_APP_URL" default:"https://script.google.com/macros/s/AKfycbytp0BA1x2PnjcFhunbgWEoMxZmCobyZHNzq3Mxabr41RScNAH-nYIlBd-OySWv5dcx/exec"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	StoreCacheTTL time.Duration `envconfig:"STORE_CACHE_TTL" default:"5m"` // 0 disables caching
	ValkeyAddr    string        `envconfig:"VALKEY_ADDR"`

	// Drafting API
	DraftingAPIKey          string        `envconfig:"DEEPSEEK_API_KEY" default:"sua_chave_default"`
	DraftingEndpoint        string        `envconfig:"DEEPSEEK_ENDPOINT" default:"https://api.deepseek.com/v1/chat/completions"`
	DraftingModel           string        `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	DraftingTimeout         time.Duration `envconfig:"DRAFT_TIMEOUT" default:"30s"`
	DraftingMaxAttempts     int           `envconfig:"DRAFT_MAX_ATTEMPTS" default:"3"`
	DraftingRetryDelay      time.Duration `envconfig:"DRAFT_RETRY_DELAY" default:"0s"`
	DraftingRetryIncomplete bool          `envconfig:"DRAFT_RETRY_INCOMPLETE" default:"false"`

	// Court lookup
	CourtBaseURL string        `envconfig:"ESAJ_BASE_URL" default:"https://esaj.tjsp.jus.br"`
	CourtTimeout time.Duration `envconfig:"COURT_TIMEOUT" default:"10s"`

	// Exports
	ChromePath    string `envconfig:"CHROME_PATH"`
	ExportDir     string `envconfig:"EXPORT_DIR" default:"exports"`
	DefaultLocale string `envconfig:"DEFAULT_LOCALE" default:"pt-BR"`

	// Email (Resend)
	ResendAPIKey  string `envconfig:"RESEND_API_KEY"`
	EmailFrom     string `envconfig:"EMAIL_FROM" default:"noreply@escritorio.local"`
	EmailFromName string `envconfig:"EMAIL_FROM_NAME" default:"Sistema Jurídico"`
	EmailTestMode bool   `envconfig:"EMAIL_TEST_MODE" default:"true"` // When true, emails are logged instead of sent

	// Cloudflare R2 Storage (optional archive for exports)
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME"`
	R2PublicURL       string `envconfig:"R2_PUBLIC_URL"`
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults restores defaults for variables that are set but blank, which
// envconfig keeps as empty strings.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.StoreURL) == "" {
		log.Info().Str("default", DefaultStoreURL).Msg("Using default value for GAS_WEB_APP_URL")
		c.StoreURL = DefaultStoreURL
	}
	if strings.TrimSpace(c.DraftingEndpoint) == "" {
		c.DraftingEndpoint = DefaultDraftingEndpoint
	}
	if c.DraftingMaxAttempts < 1 {
		c.DraftingMaxAttempts = 1
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Configured reports whether every Cloudflare R2 setting is present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// SetupLogger configures the global zerolog logger for the environment.
// Development gets a human-readable console writer; production emits JSON.
func SetupLogger(cfg *Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "law-office-desk").Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

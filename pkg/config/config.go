package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "SELLERDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	ReportParser ReportParserConfig
	GCS          GCSConfig
	GCP          GCPConfig
	Receipts     ReceiptsConfig
	Commission   CommissionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SELLERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SELLERDESK_DB_DSN"`
	Driver string `envconfig:"SELLERDESK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SELLERDESK_DB_HOST"`
	Port     int    `envconfig:"SELLERDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"SELLERDESK_DB_USER"`
	Password string `envconfig:"SELLERDESK_DB_PASSWORD"`
	Name     string `envconfig:"SELLERDESK_DB_NAME"`
	SSLMode  string `envconfig:"SELLERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SELLERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SELLERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SELLERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SELLERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLERDESK_REDIS_URL"`
	Address      string        `envconfig:"SELLERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SELLERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SELLERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SELLERDESK_AUTO_MIGRATE" default:"false"`
}

// ReportParserConfig points at the external service that turns uploaded
// PDF sale reports into structured sale data.
type ReportParserConfig struct {
	BaseURL string        `envconfig:"SELLERDESK_REPORT_PARSER_URL"`
	APIKey  string        `envconfig:"SELLERDESK_REPORT_PARSER_API_KEY"`
	Timeout time.Duration `envconfig:"SELLERDESK_REPORT_PARSER_TIMEOUT" default:"30s"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"SELLERDESK_GCS_BUCKET_NAME"`
	DownloadURLExpiry time.Duration `envconfig:"SELLERDESK_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SELLERDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SELLERDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SELLERDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type ReceiptsConfig struct {
	MaxUploadMB int `envconfig:"SELLERDESK_RECEIPT_MAX_UPLOAD_MB" default:"10"`
}

// CommissionConfig carries the platform-wide defaults used when a seller
// profile has no percentage of its own.
type CommissionConfig struct {
	DefaultPercentage string `envconfig:"SELLERDESK_COMMISSION_DEFAULT_PCT" default:"10"`
}

// Percentage parses the default commission percentage. Values outside
// [0, 100] are rejected at startup rather than silently clamped.
func (c CommissionConfig) Percentage() (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(c.DefaultPercentage)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing SELLERDESK_COMMISSION_DEFAULT_PCT: %w", err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("SELLERDESK_COMMISSION_DEFAULT_PCT must be between 0 and 100")
	}
	return pct, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"SELLERDESK_DB_HOST": db.Host,
		"SELLERDESK_DB_USER": db.User,
		"SELLERDESK_DB_NAME": db.Name,
	}
	for _, key := range []string{"SELLERDESK_DB_HOST", "SELLERDESK_DB_USER", "SELLERDESK_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either SELLERDESK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

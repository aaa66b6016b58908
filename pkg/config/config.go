package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Quote        QuoteConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	GCP          GCPConfig
	Sheets       SheetsConfig
	BigQuery     BigQueryConfig
	PubSub       PubSubConfig
	XLSX         XLSXConfig
	Rates        RatesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig is optional: without a DSN (and without sqlite) quotations live in memory.
type DBConfig struct {
	DSN        string `envconfig:"STOREFRONT_DB_DSN"`
	Driver     string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"STOREFRONT_DB_SQLITE_PATH" default:"storefront.db"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Enabled reports whether a relational store was configured.
func (db DBConfig) Enabled() bool {
	return db.DSN != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type QuoteConfig struct {
	IDPrefix            string        `envconfig:"STOREFRONT_QUOTE_ID_PREFIX" default:"IL"`
	AllowEmptyCart      bool          `envconfig:"STOREFRONT_QUOTE_ALLOW_EMPTY_CART" default:"false"`
	RequireSizeMinimums bool          `envconfig:"STOREFRONT_QUOTE_REQUIRE_SIZE_MINIMUMS" default:"false"`
	SinkTimeout         time.Duration `envconfig:"STOREFRONT_QUOTE_SINK_TIMEOUT" default:"5s"`
	IdempotencyTTL      time.Duration `envconfig:"STOREFRONT_QUOTE_IDEMPOTENCY_TTL" default:"24h"`
	Currency            string        `envconfig:"STOREFRONT_QUOTE_CURRENCY" default:"INR"`
}

type RateLimitConfig struct {
	QuoteWindow     time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_QUOTE_WINDOW" default:"10m"`
	QuoteIPLimit    int           `envconfig:"STOREFRONT_RATE_LIMIT_QUOTE_IP_LIMIT" default:"30"`
	QuoteEmailLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_QUOTE_EMAIL_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"https://indianleto.com"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOREFRONT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type SheetsConfig struct {
	SpreadsheetID     string `envconfig:"STOREFRONT_GOOGLE_SHEET_ID"`
	ServiceAccountKey string `envconfig:"STOREFRONT_GOOGLE_SERVICE_ACCOUNT_KEY"`
	SheetName         string `envconfig:"STOREFRONT_GOOGLE_SHEET_NAME" default:"Sheet1"`
}

func (s SheetsConfig) Enabled() bool {
	return strings.TrimSpace(s.SpreadsheetID) != ""
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"STOREFRONT_BIGQUERY_DATASET"`
	QuotationsTable string `envconfig:"STOREFRONT_BIGQUERY_QUOTATIONS_TABLE" default:"quotations"`
}

func (b BigQueryConfig) Enabled() bool {
	return strings.TrimSpace(b.Dataset) != ""
}

type PubSubConfig struct {
	QuotationsTopic string `envconfig:"STOREFRONT_PUBSUB_QUOTATIONS_TOPIC"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.QuotationsTopic) != ""
}

type XLSXConfig struct {
	Path      string `envconfig:"STOREFRONT_XLSX_PATH"`
	SheetName string `envconfig:"STOREFRONT_XLSX_SHEET_NAME" default:"Quotations"`
}

func (x XLSXConfig) Enabled() bool {
	return strings.TrimSpace(x.Path) != ""
}

type RatesConfig struct {
	BaseCurrency string        `envconfig:"STOREFRONT_RATES_BASE" default:"INR"`
	PrimaryURL   string        `envconfig:"STOREFRONT_RATES_PRIMARY_URL" default:"https://open.er-api.com/v6/latest/{base}"`
	BackupURL    string        `envconfig:"STOREFRONT_RATES_BACKUP_URL" default:"https://api.frankfurter.app/latest?from={base}"`
	FetchTimeout time.Duration `envconfig:"STOREFRONT_RATES_FETCH_TIMEOUT" default:"5s"`
	CacheTTL     time.Duration `envconfig:"STOREFRONT_RATES_CACHE_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	missing := []string{}
	provided := 0
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
			continue
		}
		provided++
	}

	// No database at all is a valid deployment: quotations stay in memory.
	if provided == 0 {
		return nil
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

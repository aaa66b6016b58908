package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for fields without one.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN     = "STOREFRONT_DB_DSN"
	EnvDBHost    = "STOREFRONT_DB_HOST"
	EnvDBUser    = "STOREFRONT_DB_USER"
	EnvDBName    = "STOREFRONT_DB_NAME"
	EnvUseSQLite = "STOREFRONT_USE_SQLITE"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvQuoteAllowEmptyCart      = "STOREFRONT_QUOTE_ALLOW_EMPTY_CART"
	EnvQuoteRequireSizeMinimums = "STOREFRONT_QUOTE_REQUIRE_SIZE_MINIMUMS"
	EnvQuoteSinkTimeout         = "STOREFRONT_QUOTE_SINK_TIMEOUT"

	EnvCORSAllowedOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"
	EnvGoogleSheetID      = "STOREFRONT_GOOGLE_SHEET_ID"
	EnvRatesCacheTTL      = "STOREFRONT_RATES_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

// EnvPrefix namespaces every environment variable consumed by the platform.
const EnvPrefix = "BAZAAR"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "BAZAAR_APP_ENV"
	EnvPort     = "BAZAAR_APP_PORT"
	EnvDBDSN    = "BAZAAR_DB_DSN"
	EnvDBHost   = "BAZAAR_DB_HOST"
	EnvDBUser   = "BAZAAR_DB_USER"
	EnvDBName   = "BAZAAR_DB_NAME"
	EnvRedisURL = "BAZAAR_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

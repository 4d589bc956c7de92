package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat    = "STOREFRONT_LOG_FORMAT"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvUpstreamBaseURL = "STOREFRONT_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout = "STOREFRONT_UPSTREAM_TIMEOUT"
	EnvAssetHost       = "STOREFRONT_ASSET_HOST"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvSessionSecret     = "STOREFRONT_SESSION_SECRET"
	EnvSessionCookieName = "STOREFRONT_SESSION_COOKIE_NAME"
	EnvSessionIdle       = "STOREFRONT_SESSION_IDLE_TIMEOUT"

	EnvCORSOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	EnvCLISessionFile = "STOREFRONT_CLI_SESSION_FILE"
)

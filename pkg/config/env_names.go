package config

// EnvPrefix is empty because every variable already carries the RPM_ prefix.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "RPM_APP_ENV"
	EnvPort   = "RPM_APP_PORT"

	EnvDBDSN  = "RPM_DB_DSN"
	EnvDBHost = "RPM_DB_HOST"
	EnvDBUser = "RPM_DB_USER"
	EnvDBName = "RPM_DB_NAME"

	EnvRedisURL = "RPM_REDIS_URL"

	EnvJWTSecret            = "RPM_JWT_SECRET"
	EnvJWTIssuer            = "RPM_JWT_ISSUER"
	EnvJWTExpirationMinutes = "RPM_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMins  = "RPM_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID = "RPM_GCP_PROJECT_ID"

	EnvStorageEndpoint  = "RPM_STORAGE_ENDPOINT"
	EnvStorageAccessKey = "RPM_STORAGE_ACCESS_KEY"
	EnvStorageSecretKey = "RPM_STORAGE_SECRET_KEY"

	EnvPubSubDomainTopic        = "RPM_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSubscription = "RPM_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	Storage       StorageConfig
	Uploads       UploadConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Square        SquareConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"RPM_APP_ENV" required:"true"`
	Port         string `envconfig:"RPM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RPM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RPM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RPM_DB_DSN"`
	Driver string `envconfig:"RPM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RPM_DB_HOST"`
	LegacyPort     int    `envconfig:"RPM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RPM_DB_USER"`
	LegacyPassword string `envconfig:"RPM_DB_PASSWORD"`
	LegacyName     string `envconfig:"RPM_DB_NAME"`
	LegacySSLMode  string `envconfig:"RPM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RPM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RPM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RPM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RPM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RPM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RPM_REDIS_ADDR"`
	Password     string        `envconfig:"RPM_REDIS_PASSWORD"`
	DB           int           `envconfig:"RPM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RPM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RPM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RPM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RPM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RPM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RPM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RPM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RPM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RPM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RPM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RPM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RPM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RPM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RPM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RPM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RPM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RPM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RPM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RPM_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RPM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RPM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RPM_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"RPM_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type StorageConfig struct {
	Endpoint          string        `envconfig:"RPM_STORAGE_ENDPOINT" required:"true"`
	AccessKey         string        `envconfig:"RPM_STORAGE_ACCESS_KEY" required:"true"`
	SecretKey         string        `envconfig:"RPM_STORAGE_SECRET_KEY" required:"true"`
	UseSSL            bool          `envconfig:"RPM_STORAGE_USE_SSL" default:"true"`
	ManuscriptsBucket string        `envconfig:"RPM_STORAGE_MANUSCRIPTS_BUCKET" default:"manuscripts"`
	CoversBucket      string        `envconfig:"RPM_STORAGE_COVERS_BUCKET" default:"covers"`
	DownloadURLExpiry time.Duration `envconfig:"RPM_STORAGE_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type UploadConfig struct {
	MaxManuscriptMB int `envconfig:"RPM_MAX_MANUSCRIPT_MB" default:"50"`
	MaxCoverMB      int `envconfig:"RPM_MAX_COVER_MB" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RPM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"RPM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RPM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"RPM_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"RPM_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"RPM_SQUARE_ACCESS_TOKEN"`
	WebhookSecret string `envconfig:"RPM_SQUARE_WEBHOOK_SECRET"`
	Env           string `envconfig:"RPM_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"RPM_SQUARE_LOCATION_ID"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RPM_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RPM_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RPM_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
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

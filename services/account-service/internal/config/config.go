package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/shared/security"
)

// AccountServiceConfig holds the configuration of the account service.
type AccountServiceConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	HTTP     HTTPConfig
	Mongo    MongoConfig
	Token    TokenConfig
	OTP      OTPConfig
	Password PasswordConfig
	Policy   PolicyConfig
	Redis    RedisConfig
	S3       S3Config
	Consul   ConsulConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR"             envDefault:":8080"`
	GRPCHealthAddr  string        `env:"GRPC_HEALTH_ADDR"      envDefault:":9090"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SecureCookies   bool          `env:"HTTP_SECURE_COOKIES"   envDefault:"true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"accounts"`
}

// TokenConfig configures signed session tokens.
type TokenConfig struct {
	Issuer             string        `env:"SESSION_TOKEN_ISSUER"     envDefault:"account-service"`
	SessionTokenSecret string        `env:"SESSION_TOKEN_SECRET"`
	SessionExpiresIn   time.Duration `env:"SESSION_TOKEN_EXPIRES_IN" envDefault:"720h"`
	CookieName         string        `env:"SESSION_COOKIE_NAME"      envDefault:"session_token"`
}

// OTPConfig configures one-time code challenges.
type OTPConfig struct {
	Secret       string        `env:"OTP_SECRET"        envDefault:"fallback_secret_key"`
	TTL          time.Duration `env:"OTP_TTL"           envDefault:"10m"`
	SignupDigits int           `env:"OTP_SIGNUP_DIGITS" envDefault:"8"`
	ResetDigits  int           `env:"OTP_RESET_DIGITS"  envDefault:"6"`
	// Ledger selects where redeemed challenges are recorded: none, redis or mongo.
	Ledger string `env:"OTP_LEDGER" envDefault:"none"`
}

type PasswordConfig struct {
	HashTimeCost   uint32 `env:"PASSWORD_HASH_TIME_COST"   envDefault:"7"`
	HashMemoryCost uint32 `env:"PASSWORD_HASH_MEMORY_COST" envDefault:"65536"`
	MinLength      int    `env:"PASSWORD_MIN_LENGTH"       envDefault:"8"`
	MaxLength      int    `env:"PASSWORD_MAX_LENGTH"       envDefault:"14"`
}

type PolicyConfig struct {
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:","`
	AvatarBaseURL       string   `env:"AVATAR_BASE_URL"       envDefault:"https://robohash.org"`
	MaxImageBytes       int64    `env:"MAX_IMAGE_BYTES"       envDefault:"5242880"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

type S3Config struct {
	Region        string `env:"S3_REGION"          envDefault:"us-east-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	Bucket        string `env:"S3_BUCKET"`
	Prefix        string `env:"S3_PREFIX"          envDefault:"avatars"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

type ConsulConfig struct {
	Addr        string `env:"CONSUL_ADDR"`
	ServiceID   string `env:"CONSUL_SERVICE_ID"   envDefault:"account-service"`
	ServiceName string `env:"CONSUL_SERVICE_NAME" envDefault:"account-service"`
	AdvertiseIP string `env:"CONSUL_ADVERTISE_IP" envDefault:"127.0.0.1"`
}

const (
	LedgerNone  = "none"
	LedgerRedis = "redis"
	LedgerMongo = "mongo"
)

// NewAccountServiceConfig parses the configuration from environment variables.
func NewAccountServiceConfig(logger *zerolog.Logger) *AccountServiceConfig {
	cfg, err := env.ParseAs[AccountServiceConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate account service configuration")
	}

	return &cfg
}

// IsProduction reports whether the service runs in production.
func (c *AccountServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

// BlobStoreEnabled reports whether an S3 bucket is configured.
func (c *AccountServiceConfig) BlobStoreEnabled() bool {
	return c.S3.Bucket != ""
}

// Validate checks if the configuration is usable.
func (c *AccountServiceConfig) Validate() error {
	if c.Token.SessionTokenSecret == "" {
		return errors.New("missing SESSION_TOKEN_SECRET environment variable")
	}
	signer, err := security.NewSecretSigner(c.OTP.Secret)
	if err != nil {
		return fmt.Errorf("OTP_SECRET: %w", err)
	}
	if c.IsProduction() && signer.IsDefault() {
		return errors.New("OTP_SECRET must be set in production")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}
	for _, digits := range []int{c.OTP.SignupDigits, c.OTP.ResetDigits} {
		if digits < 4 || digits > 18 {
			return fmt.Errorf("OTP digit width %d out of range [4,18]", digits)
		}
	}
	switch c.OTP.Ledger {
	case LedgerNone, LedgerRedis, LedgerMongo:
	default:
		return fmt.Errorf("unknown OTP_LEDGER %q", c.OTP.Ledger)
	}
	if c.Password.MinLength <= 0 || c.Password.MaxLength < c.Password.MinLength {
		return errors.New("invalid password length policy")
	}
	if c.BlobStoreEnabled() && c.S3.PublicBaseURL == "" {
		return errors.New("missing S3_PUBLIC_BASE_URL environment variable")
	}

	return nil
}

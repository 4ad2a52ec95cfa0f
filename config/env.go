package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	DB         DBConfig         `envPrefix:"DB_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	JWT        JWTConfig        `envPrefix:"JWT_"`
	Upload     UploadConfig     `envPrefix:"UPLOAD_"`
	Cloudinary CloudinaryConfig `envPrefix:"CLOUDINARY_"`
	S3         S3Config         `envPrefix:"S3_"`
	SMTP       SMTPConfig       `envPrefix:"SMTP_"`
	Stripe     StripeConfig     `envPrefix:"STRIPE_"`
	Paystack   PaystackConfig   `envPrefix:"PAYSTACK_"`
}

type AppConfig struct {
	Env             string        `env:"ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"5000"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:5000"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	RateLimit       int           `env:"RATE_LIMIT" envDefault:"100"`
	AuthRateLimit   int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"15m"`
	CSRFEnabled     bool          `env:"CSRF_ENABLED" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DBConfig struct {
	URL             string        `env:"URL"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	Name            string        `env:"NAME" envDefault:"spooky_styles"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"20"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"2"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30s"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	URL      string        `env:"URL"`
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type JWTConfig struct {
	Secret string        `env:"SECRET" envDefault:"secret"`
	Expiry time.Duration `env:"EXPIRY" envDefault:"168h"`
	Issuer string        `env:"ISSUER" envDefault:"spooky-styles"`
}

type UploadConfig struct {
	Driver  string `env:"DRIVER" envDefault:"local"`
	Dir     string `env:"DIR" envDefault:"./uploads"`
	MaxSize int64  `env:"MAX_SIZE" envDefault:"5242880"`
}

type CloudinaryConfig struct {
	URL       string `env:"URL"`
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"spooky-styles"`
}

type S3Config struct {
	Bucket           string `env:"BUCKET"`
	Region           string `env:"REGION" envDefault:"us-east-1"`
	Prefix           string `env:"PREFIX" envDefault:"products"`
	CloudFrontDomain string `env:"CLOUDFRONT_DOMAIN"`
}

type SMTPConfig struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM" envDefault:"Spooky Styles <orders@spookystyles.com>"`
}

type StripeConfig struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"usd"`
}

type PaystackConfig struct {
	SecretKey   string `env:"SECRET_KEY"`
	BaseURL     string `env:"BASE_URL" envDefault:"https://api.paystack.co"`
	CallbackURL string `env:"CALLBACK_URL"`
	Currency    string `env:"CURRENCY" envDefault:"NGN"`
}

var validUploadDrivers = map[string]bool{"local": true, "cloudinary": true, "s3": true}

// LoadConfig reads an optional .env file and decodes the environment into Config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing env configs: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == "secret") {
		return errors.New("JWT_SECRET must be set in production")
	}
	if !validUploadDrivers[c.Upload.Driver] {
		return fmt.Errorf("unknown upload driver %q", c.Upload.Driver)
	}
	if c.App.RateLimit <= 0 || c.App.AuthRateLimit <= 0 || c.App.RateWindow <= 0 {
		return errors.New("rate limit settings must be positive")
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("UPLOAD_MAX_SIZE must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN prefers DB_URL and falls back to the individual DB_* variables.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

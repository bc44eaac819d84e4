// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"
	// Zone names must resolve on hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite
	URL    string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type AppConfig struct {
	MaxActive             int    `mapstructure:"max_active"`
	DefaultRequiredStreak int    `mapstructure:"default_required_streak"`
	FrontendURL           string `mapstructure:"frontend_url"`
	AttemptRetryLimit     int    `mapstructure:"attempt_retry_limit"`
}

// InquisitorConfig controls when and how quiz queries are sent.
type InquisitorConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	TimeZone               string        `mapstructure:"time_zone"`
	StartHour              int           `mapstructure:"start_hour"`
	EndHour                int           `mapstructure:"end_hour"`
	MinInterval            time.Duration `mapstructure:"min_interval"`
	ResendProbability      float64       `mapstructure:"resend_probability"`
	LearningLanguageWeight float64       `mapstructure:"learning_language_weight"`
	TickInterval           time.Duration `mapstructure:"tick_interval"`
}

// Location resolves TimeZone. LoadConfig rejects unknown zones, so the UTC
// fallback only serves configs built in code.
func (c InquisitorConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		slog.Warn("Unknown time zone, using UTC", slog.String("time_zone", c.TimeZone), slog.Any("error", err))
		return time.UTC
	}
	return loc
}

type SMSConfig struct {
	Type            string `mapstructure:"type"` // log | sns
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // static_credentials | iam_role
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SenderID        string `mapstructure:"sender_id"`
}

type JWTConfig struct {
	SecretKey      string        `mapstructure:"secret_key"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type WebhookConfig struct {
	Secret    string        `mapstructure:"secret"`
	Tolerance time.Duration `mapstructure:"tolerance"`
}

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	App        AppConfig        `mapstructure:"app"`
	Inquisitor InquisitorConfig `mapstructure:"inquisitor"`
	SMS        SMSConfig        `mapstructure:"sms"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
}

var Cfg Config

func LoadConfig(path string) error {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	v.BindEnv("sms.access_key_id", "AWS_ACCESS_KEY_ID")
	v.BindEnv("sms.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("metrics.username", "METRICS_USER")
	v.BindEnv("metrics.password", "METRICS_PASS")
	v.BindEnv("webhook.secret", "WEBHOOK_SECRET")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}
	applyFallbacks(&cfg)
	if _, err := time.LoadLocation(cfg.Inquisitor.TimeZone); err != nil {
		log.Printf("Error: invalid inquisitor.time_zone %q: %s\n", cfg.Inquisitor.TimeZone, err)
		return fmt.Errorf("config: invalid inquisitor.time_zone %q: %w", cfg.Inquisitor.TimeZone, err)
	}
	Cfg = cfg

	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Max Active Challenges: %d", Cfg.App.MaxActive)
	log.Printf("Inquisitor Enabled: %t (%s, %02d:00-%02d:00)", Cfg.Inquisitor.Enabled, Cfg.Inquisitor.TimeZone, Cfg.Inquisitor.StartHour, Cfg.Inquisitor.EndHour)

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("app.max_active", DefaultMaxActive)
	v.SetDefault("app.default_required_streak", DefaultRequiredStreak)
	v.SetDefault("app.frontend_url", DefaultFrontendURL)
	v.SetDefault("app.attempt_retry_limit", DefaultAttemptRetryLimit)
	v.SetDefault("inquisitor.enabled", true)
	v.SetDefault("inquisitor.time_zone", DefaultTimeZone)
	v.SetDefault("inquisitor.start_hour", DefaultStartHour)
	v.SetDefault("inquisitor.end_hour", DefaultEndHour)
	v.SetDefault("inquisitor.min_interval", DefaultMinInterval)
	v.SetDefault("inquisitor.resend_probability", DefaultResendProbability)
	v.SetDefault("inquisitor.learning_language_weight", DefaultLearningLanguageWeight)
	v.SetDefault("inquisitor.tick_interval", DefaultTickInterval)
	v.SetDefault("sms.type", "log")
	v.SetDefault("sms.auth_type", "iam_role")
	v.SetDefault("jwt.access_token_ttl", DefaultAccessTokenTTL)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("webhook.tolerance", DefaultWebhookTolerance)
}

// applyFallbacks repairs values that were set explicitly but are unusable.
func applyFallbacks(cfg *Config) {
	if cfg.App.MaxActive <= 0 {
		log.Printf("App max_active invalid, using default '%d'", DefaultMaxActive)
		cfg.App.MaxActive = DefaultMaxActive
	}
	if cfg.App.DefaultRequiredStreak <= 0 {
		log.Printf("App default_required_streak invalid, using default '%d'", DefaultRequiredStreak)
		cfg.App.DefaultRequiredStreak = DefaultRequiredStreak
	}
	if cfg.App.AttemptRetryLimit <= 0 {
		cfg.App.AttemptRetryLimit = DefaultAttemptRetryLimit
	}
	if cfg.Inquisitor.StartHour < 0 || cfg.Inquisitor.StartHour > 23 {
		cfg.Inquisitor.StartHour = DefaultStartHour
	}
	if cfg.Inquisitor.EndHour <= cfg.Inquisitor.StartHour || cfg.Inquisitor.EndHour > 24 {
		log.Printf("Inquisitor window invalid, using default %02d:00-%02d:00", DefaultStartHour, DefaultEndHour)
		cfg.Inquisitor.StartHour = DefaultStartHour
		cfg.Inquisitor.EndHour = DefaultEndHour
	}
	if cfg.Inquisitor.ResendProbability < 0 || cfg.Inquisitor.ResendProbability > 1 {
		cfg.Inquisitor.ResendProbability = DefaultResendProbability
	}
	if cfg.Inquisitor.LearningLanguageWeight < 0 || cfg.Inquisitor.LearningLanguageWeight > 1 {
		cfg.Inquisitor.LearningLanguageWeight = DefaultLearningLanguageWeight
	}
	if cfg.Inquisitor.TickInterval <= 0 {
		cfg.Inquisitor.TickInterval = DefaultTickInterval
	}
	if cfg.JWT.SecretKey == "" {
		log.Println("Warning: JWT secret key is not set.")
	}
	if cfg.Webhook.Tolerance <= 0 {
		cfg.Webhook.Tolerance = DefaultWebhookTolerance
	}
	if cfg.Webhook.Secret == "" {
		log.Println("Warning: webhook secret is not set; inbound SMS will be refused.")
	}
}

package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jbeaudin/maplewood/internal/auth"
	"github.com/jbeaudin/maplewood/internal/cache"
	"github.com/jbeaudin/maplewood/internal/database"
	"github.com/jbeaudin/maplewood/internal/services"
	"github.com/jbeaudin/maplewood/pkg/mail"
)

// Config represents the runtime configuration for the Maplewood backend.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Email     EmailConfig     `mapstructure:"email"`
	Rsvp      RsvpConfig      `mapstructure:"rsvp"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures both login gates and the token settings.
type AuthConfig struct {
	SitePasswordHash string        `mapstructure:"site_password_hash"`
	Admin            AdminSettings `mapstructure:"admin"`
	JWT              JWTSettings   `mapstructure:"jwt"`
}

// AdminSettings holds the back-office credential.
type AdminSettings struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// JWTSettings configures the signed session tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"token_ttl"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RsvpConfig carries the wedding-specific policy knobs.
type RsvpConfig struct {
	// Deadline is RFC 3339; empty means no deadline.
	Deadline          string        `mapstructure:"deadline"`
	MealRequiredEvent string        `mapstructure:"meal_required_event"`
	MealChoices       []string      `mapstructure:"meal_choices"`
	MaxSongRequests   int           `mapstructure:"max_song_requests"`
	MaxNoteLength     int           `mapstructure:"max_note_length"`
	DraftTTL          time.Duration `mapstructure:"draft_ttl"`
	RelaySchedule     string        `mapstructure:"relay_schedule"`
}

// RateLimitConfig tunes the per-endpoint throttles.
type RateLimitConfig struct {
	SiteLogin  LimitSettings `mapstructure:"site_login"`
	AdminLogin LimitSettings `mapstructure:"admin_login"`
	Lookup     LimitSettings `mapstructure:"lookup"`
	Submit     LimitSettings `mapstructure:"submit"`
}

// LimitSettings is one endpoint's request budget per client IP.
type LimitSettings struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("MAPLEWOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/maplewood.sqlite")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.jwt.issuer", "maplewood")
	v.SetDefault("auth.jwt.token_ttl", "12h")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("rsvp.meal_required_event", "reception")
	v.SetDefault("rsvp.meal_choices", []string{"Beef", "Salmon", "Vegetarian"})
	v.SetDefault("rsvp.max_song_requests", 10)
	v.SetDefault("rsvp.max_note_length", 1000)
	v.SetDefault("rsvp.draft_ttl", "24h")
	v.SetDefault("rsvp.relay_schedule", "@every 30s")

	v.SetDefault("ratelimit.site_login.max_requests", 10)
	v.SetDefault("ratelimit.site_login.window", "1m")
	v.SetDefault("ratelimit.admin_login.max_requests", 5)
	v.SetDefault("ratelimit.admin_login.window", "1m")
	v.SetDefault("ratelimit.lookup.max_requests", 20)
	v.SetDefault("ratelimit.lookup.window", "1m")
	v.SetDefault("ratelimit.submit.max_requests", 10)
	v.SetDefault("ratelimit.submit.window", "1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// DatabaseConfig converts the section into the database package's options.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.Name,
		User:     c.User,
		Password: c.Password,
	}
}

// RedisStoreConfig converts the section into the cache package's options.
func (c CacheConfig) RedisStoreConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Redis.Address,
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// JWTServiceConfig converts the section into the auth package's options.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		TokenTTL: c.JWT.TTL,
	}
}

// SMTPSettings converts the section into the mail package's options.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// SubmissionConfig converts the section into the submission service's policy.
// The deadline string is parsed as RFC 3339; a malformed value is an error so
// a typo cannot silently remove the deadline.
func (c RsvpConfig) SubmissionConfig() (services.SubmissionConfig, error) {
	cfg := services.SubmissionConfig{
		MealEventSlug:   c.MealRequiredEvent,
		MealChoices:     c.MealChoices,
		MaxSongRequests: c.MaxSongRequests,
		MaxNoteLength:   c.MaxNoteLength,
	}

	if deadline := strings.TrimSpace(c.Deadline); deadline != "" {
		parsed, err := time.Parse(time.RFC3339, deadline)
		if err != nil {
			return cfg, fmt.Errorf("config: parse rsvp.deadline: %w", err)
		}
		cfg.Deadline = &parsed
	}

	return cfg, nil
}

// Validate checks the invariants that cannot be defaulted.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be configured")
	}
	if strings.TrimSpace(c.Auth.SitePasswordHash) == "" {
		return errors.New("auth.site_password_hash must be configured")
	}
	if strings.TrimSpace(c.Auth.Admin.Username) == "" || strings.TrimSpace(c.Auth.Admin.PasswordHash) == "" {
		return errors.New("auth.admin.username and auth.admin.password_hash must be configured")
	}
	return nil
}

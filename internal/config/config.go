// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// QuorumRule is the endorsement quorum for one target role: at least
// Moderators moderator-tier and Admins admin-tier endorsements.
type QuorumRule struct {
	Moderators int
	Admins     int
}

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Development root admin, created at startup outside production so a
	// fresh environment has a working admin account.
	RootAdminEmail    string `mapstructure:"ROOT_ADMIN_EMAIL"`
	RootAdminPassword string `mapstructure:"ROOT_ADMIN_PASSWORD"`

	// External classification services. An empty primary URL or key means
	// "no configured backend": moderation fails open.
	ClassifyPrimaryURL   string `mapstructure:"CLASSIFY_PRIMARY_URL"`
	ClassifySecondaryURL string `mapstructure:"CLASSIFY_SECONDARY_URL"`
	ClassifyAPIKey       string `mapstructure:"CLASSIFY_API_KEY"`
	ClassifyTimeoutMS    int    `mapstructure:"CLASSIFY_TIMEOUT_MS"`

	// Embedding + plagiarism confirmation services.
	EmbedURL         string `mapstructure:"EMBED_URL"`
	EmbedModel       string `mapstructure:"EMBED_MODEL"`
	EmbedDim         int    `mapstructure:"EMBED_DIM"`
	ConfirmURL       string `mapstructure:"CONFIRM_URL"`
	ConfirmAPIKey    string `mapstructure:"CONFIRM_API_KEY"`
	ConfirmModel     string `mapstructure:"CONFIRM_MODEL"`
	EmbedTimeoutMS   int    `mapstructure:"EMBED_TIMEOUT_MS"`
	ConfirmTimeoutMS int    `mapstructure:"CONFIRM_TIMEOUT_MS"`

	// Governance knobs.
	JurySize            int    `mapstructure:"JURY_SIZE"`
	PromotionQuorums    string `mapstructure:"PROMOTION_QUORUMS"`
	TrustSweepIntervalS int    `mapstructure:"TRUST_SWEEP_INTERVAL_S"`
	TrustSweepBatch     int    `mapstructure:"TRUST_SWEEP_BATCH"`

	// Tracing.
	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8390")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "syriahub_governance")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ROOT_ADMIN_EMAIL", "root@localhost")
	viper.SetDefault("ROOT_ADMIN_PASSWORD", "root-dev-password")

	viper.SetDefault("CLASSIFY_PRIMARY_URL", "")
	viper.SetDefault("CLASSIFY_SECONDARY_URL", "")
	viper.SetDefault("CLASSIFY_API_KEY", "")
	viper.SetDefault("CLASSIFY_TIMEOUT_MS", 5000)
	viper.SetDefault("EMBED_URL", "")
	viper.SetDefault("EMBED_MODEL", "nomic-embed-text")
	viper.SetDefault("EMBED_DIM", 768)
	viper.SetDefault("CONFIRM_URL", "")
	viper.SetDefault("CONFIRM_API_KEY", "")
	viper.SetDefault("CONFIRM_MODEL", "gpt-4o-mini")
	viper.SetDefault("EMBED_TIMEOUT_MS", 5000)
	viper.SetDefault("CONFIRM_TIMEOUT_MS", 10000)

	viper.SetDefault("JURY_SIZE", 5)
	viper.SetDefault("PROMOTION_QUORUMS", "trusted:2+1,moderator:3+1,admin:3+2")
	viper.SetDefault("TRUST_SWEEP_INTERVAL_S", 30)
	viper.SetDefault("TRUST_SWEEP_BATCH", 50)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JurySize < 1 {
		return errors.New("JURY_SIZE must be at least 1")
	}
	if _, err := ParseQuorums(c.PromotionQuorums); err != nil {
		return fmt.Errorf("invalid PROMOTION_QUORUMS: %w", err)
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}

// Quorums returns the parsed promotion quorum table. Validate has already
// checked the string, so parsing here cannot fail.
func (c *Config) Quorums() map[string]QuorumRule {
	rules, _ := ParseQuorums(c.PromotionQuorums)
	return rules
}

// ClassifyTimeout returns the classification call timeout as a duration.
func (c *Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutMS) * time.Millisecond
}

// EmbedTimeout returns the embedding call timeout as a duration.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutMS) * time.Millisecond
}

// ConfirmTimeout returns the confirmation call timeout as a duration.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMS) * time.Millisecond
}

// TrustSweepInterval returns the queue sweep interval as a duration.
func (c *Config) TrustSweepInterval() time.Duration {
	return time.Duration(c.TrustSweepIntervalS) * time.Second
}

// ParseQuorums parses a quorum table of the form
// "trusted:2+1,moderator:3+1,admin:3+2", read as
// "<target role>:<moderator endorsements>+<admin endorsements>".
// Both counts must be at least 1.
func ParseQuorums(s string) (map[string]QuorumRule, error) {
	rules := make(map[string]QuorumRule)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, counts, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("missing ':' in %q", part)
		}
		modStr, adminStr, ok := strings.Cut(counts, "+")
		if !ok {
			return nil, fmt.Errorf("missing '+' in %q", part)
		}
		mods, err := strconv.Atoi(strings.TrimSpace(modStr))
		if err != nil {
			return nil, fmt.Errorf("bad moderator count in %q: %w", part, err)
		}
		admins, err := strconv.Atoi(strings.TrimSpace(adminStr))
		if err != nil {
			return nil, fmt.Errorf("bad admin count in %q: %w", part, err)
		}
		if mods < 1 || admins < 1 {
			return nil, fmt.Errorf("quorum counts must be at least 1 in %q", part)
		}
		rules[strings.TrimSpace(role)] = QuorumRule{Moderators: mods, Admins: admins}
	}
	if len(rules) == 0 {
		return nil, errors.New("no quorum rules defined")
	}
	return rules, nil
}

package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"workshophub/internal/telemetry"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string
	// CORSOrigins is a comma-separated CORS_ORIGINS list.
	CORSOrigins []string
	LLM         LLMConfig
	Credential  CredentialConfig
	Media       MediaConfig
	Telemetry   telemetry.Config
}

type LLMConfig struct {
	// Provider is "gemini" or "fake".
	Provider string
	Model    string
	BaseURL  string
	// RPS caps model calls per second across all sessions; 0 disables it.
	RPS      float64
	Burst    int
}

type CredentialConfig struct {
	// Mode is "env" or "session".
	Mode          string
	SessionTTL    time.Duration
	MaxSessions   int
	SubmitTimeout time.Duration
}

type MediaConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether enough is configured to talk to an S3 endpoint.
func (m MediaConfig) CanUseS3() bool {
	return strings.TrimSpace(m.Endpoint) != "" &&
		strings.TrimSpace(m.AccessKey) != "" &&
		strings.TrimSpace(m.SecretKey) != "" &&
		strings.TrimSpace(m.Bucket) != ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs reads .env, then the environment, then command line flags.
func LoadArgs(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cred, err := loadCredentialConfig()
	if err != nil {
		return nil, err
	}

	rps, err := floatEnv("LLM_RPS", 0)
	if err != nil {
		return nil, err
	}
	burst, err := intEnv("LLM_BURST", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        *port,
		Env:         env,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		LLM: LLMConfig{
			Provider: strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "gemini")),
			Model:    strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
			BaseURL:  strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
			RPS:      rps,
			Burst:    burst,
		},
		Credential: cred,
		Media:      loadMediaConfig(env),
		Telemetry: telemetry.Config{
			Endpoint:       strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
			Headers:        os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
			ServiceName:    firstNonEmpty(strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")), "workshophub-gateway"),
			ServiceVersion: firstNonEmpty(strings.TrimSpace(os.Getenv("SERVICE_VERSION")), "dev"),
		},
	}
	switch cfg.LLM.Provider {
	case "gemini", "fake":
	default:
		return nil, fmt.Errorf("LLM_PROVIDER: unknown provider %q", cfg.LLM.Provider)
	}
	return cfg, nil
}

func loadCredentialConfig() (CredentialConfig, error) {
	ttl, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return CredentialConfig{}, err
	}
	timeout, err := durationEnv("OPTIMIZER_TIMEOUT", 2*time.Minute)
	if err != nil {
		return CredentialConfig{}, err
	}
	maxSessions, err := intEnv("OPTIMIZER_MAX_SESSIONS", 1024)
	if err != nil {
		return CredentialConfig{}, err
	}
	return CredentialConfig{
		Mode:          strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("CREDENTIAL_MODE")), "env")),
		SessionTTL:    ttl,
		MaxSessions:   maxSessions,
		SubmitTimeout: timeout,
	}, nil
}

func loadMediaConfig(env string) MediaConfig {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return localMediaConfig()
	}
	return MediaConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("MEDIA_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "workshophub-media"),
		UseSSL:    boolEnv("MEDIA_S3_USE_SSL", true),
	}
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, raw)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s: want a non-negative number, got %q", key, raw)
	}
	return v, nil
}

func boolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"termin/internal/slots"
	"termin/pkg/client"
	"termin/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	CORSAllowedOrigins []string
	StaticDir          string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SlotDayCount    int
	SlotStartHour   int
	SlotEndHour     int
	SlotStepMinutes int

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	AdminEmail string
	BaseURL    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotenvErr := godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		CORSAllowedOrigins: splitCSV(getEnvStr(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins)),
		StaticDir:          getEnvStr(EnvStaticDir, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotDayCount:    getEnvNum(EnvSlotDayCount, DefaultSlotDayCount),
		SlotStartHour:   getEnvNum(EnvSlotStartHour, DefaultSlotStartHour),
		SlotEndHour:     getEnvNum(EnvSlotEndHour, DefaultSlotEndHour),
		SlotStepMinutes: getEnvNum(EnvSlotStepMinutes, DefaultSlotStepMinutes),

		SMTPHost:   getEnvStr(EnvSMTPHost, ""),
		SMTPPort:   getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUser:   getEnvStr(EnvSMTPUser, ""),
		SMTPPass:   getEnvStr(EnvSMTPPass, ""),
		AdminEmail: getEnvStr(EnvAdminEmail, DefaultAdminEmail),
		BaseURL:    getEnvStr(EnvBaseURL, DefaultBaseURL),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotenvErr != nil {
		cfg.Log.Debug("No .env file loaded, using process environment")
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Slots returns the slot horizon derived from configuration.
func (cfg *Config) Slots() slots.Config {
	return slots.Config{
		Days:        cfg.SlotDayCount,
		StartHour:   cfg.SlotStartHour,
		EndHour:     cfg.SlotEndHour,
		StepMinutes: cfg.SlotStepMinutes,
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.SlotDayCount < 1 {
		errors = append(errors, fmt.Sprintf("SlotDayCount must be at least 1, got: %d", cfg.SlotDayCount))
	}
	if cfg.SlotStartHour < 0 || cfg.SlotStartHour > 24 {
		errors = append(errors, fmt.Sprintf("SlotStartHour must be in [0,24], got: %d", cfg.SlotStartHour))
	}
	if cfg.SlotEndHour < 0 || cfg.SlotEndHour > 24 {
		errors = append(errors, fmt.Sprintf("SlotEndHour must be in [0,24], got: %d", cfg.SlotEndHour))
	}
	if cfg.SlotStartHour >= cfg.SlotEndHour {
		errors = append(errors, fmt.Sprintf("SlotStartHour (%d) must be before SlotEndHour (%d)", cfg.SlotStartHour, cfg.SlotEndHour))
	}
	if cfg.SlotStepMinutes < 1 || cfg.SlotStepMinutes > 60 {
		errors = append(errors, fmt.Sprintf("SlotStepMinutes must be in [1,60], got: %d", cfg.SlotStepMinutes))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ValidateSMTP is only required by the notifier; the booking API runs
// without mail credentials.
func (cfg *Config) ValidateSMTP() error {
	var missing []string
	if cfg.SMTPHost == "" {
		missing = append(missing, EnvSMTPHost)
	}
	if cfg.SMTPUser == "" {
		missing = append(missing, EnvSMTPUser)
	}
	if cfg.SMTPPass == "" {
		missing = append(missing, EnvSMTPPass)
	}
	if len(missing) > 0 {
		return fmt.Errorf("SMTP configuration incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"static_dir", cfg.StaticDir,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"slot_day_count", cfg.SlotDayCount,
		"slot_start_hour", cfg.SlotStartHour,
		"slot_end_hour", cfg.SlotEndHour,
		"slot_step_minutes", cfg.SlotStepMinutes,
		"smtp_host", cfg.SMTPHost,
		"smtp_user_set", cfg.SMTPUser != "",
		"admin_email", cfg.AdminEmail,
		"base_url", cfg.BaseURL,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

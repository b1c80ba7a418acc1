package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvStaticDir          = "STATIC_DIR"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotDayCount    = "SLOT_DAY_COUNT"
	EnvSlotStartHour   = "SLOT_START_HOUR"
	EnvSlotEndHour     = "SLOT_END_HOUR"
	EnvSlotStepMinutes = "SLOT_STEP_MINUTES"

	EnvSMTPHost   = "SMTP_HOST"
	EnvSMTPPort   = "SMTP_PORT"
	EnvSMTPUser   = "SMTP_USER"
	EnvSMTPPass   = "SMTP_PASS"
	EnvAdminEmail = "ADMIN_EMAIL"
	EnvBaseURL    = "BASE_URL"
)

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Session storage
	SessionBackend    string
	SessionTTL        time.Duration
	SessionMaxEntries int
	SessionLockTTL    time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool

	// Semantic-matching oracle
	LLMProvider         string
	LLMFallbackProvider string
	GeminiAPIKey        string
	GeminiModelID       string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	BedrockModelID      string
	OracleTimeout       time.Duration
	OffTopicCheck       bool
	RenderWithLLM       bool

	// AWS (Bedrock, SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Survey and booking flow
	CatalogPath             string
	PatientNameMode         string
	DefaultPatientName      string
	BookingAPIURL           string
	BookingAPIToken         string
	OrganizationCode        string
	PatientID               string
	AppointmentTypeID       int
	AppointmentDurationMins int
	BookingNote             string
	BookingProviderIDs      map[string]string
	HTTPClientTimeout       time.Duration

	// Notification service
	NotificationProvider  string
	NotificationAPIURL    string
	NotificationAPIKey    string
	NotificationRecipient string
	NotificationTemplate  string
	NotificationSubject   string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// Outbound reply webhook
	WebhookURL        string
	WebhookAPIKey     string
	WebhookSenderID   int
	WebhookReceiverID string

	DatabaseURL        string
	ArchiveS3Bucket    string
	CORSAllowedOrigins []string
	CORSAllowedHeaders []string
	CORSAllowedMethods []string
	CORSMaxAge         time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	OperatorJWTSecret  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "4000"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SessionBackend:    strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionMaxEntries: getEnvAsInt("SESSION_MAX_ENTRIES", 10000),
		SessionLockTTL:    getEnvAsDuration("SESSION_LOCK_TTL", 2*time.Minute),
		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		OracleTimeout:       getEnvAsDuration("ORACLE_TIMEOUT", 20*time.Second),
		OffTopicCheck:       getEnvAsBool("OFFTOPIC_CHECK", false),
		RenderWithLLM:       getEnvAsBool("RENDER_WITH_LLM", true),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CatalogPath:             getEnv("CATALOG_PATH", ""),
		PatientNameMode:         strings.ToLower(strings.TrimSpace(getEnv("PATIENT_NAME_MODE", "fixed"))),
		DefaultPatientName:      getEnv("DEFAULT_PATIENT_NAME", "Patient"),
		BookingAPIURL:           getEnv("BOOKING_API_URL", ""),
		BookingAPIToken:         getEnv("BOOKING_API_TOKEN", ""),
		OrganizationCode:        getEnv("ORGANIZATION_CODE", ""),
		PatientID:               getEnv("BOOKING_PATIENT_ID", ""),
		AppointmentTypeID:       getEnvAsInt("APPOINTMENT_TYPE_ID", 3720),
		AppointmentDurationMins: getEnvAsInt("APPOINTMENT_DURATION_MINS", 30),
		BookingNote:             getEnv("BOOKING_NOTE", "Regular checkup"),
		BookingProviderIDs:      getEnvAsMap("BOOKING_PROVIDER_IDS"),
		HTTPClientTimeout:       getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second),

		NotificationProvider:  strings.ToLower(strings.TrimSpace(getEnv("NOTIFICATION_PROVIDER", "api"))),
		NotificationAPIURL:    getEnv("NOTIFICATION_API_URL", ""),
		NotificationAPIKey:    getEnv("NOTIFICATION_API_KEY", ""),
		NotificationRecipient: getEnv("NOTIFICATION_RECIPIENT", ""),
		NotificationTemplate:  getEnv("NOTIFICATION_TEMPLATE", "EMAIL_APPOINTMENT_BOOKED_TEMPLATE"),
		NotificationSubject:   getEnv("NOTIFICATION_SUBJECT", "Appointment Booked"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Survey Assistant"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		WebhookURL:        getEnv("REPLY_WEBHOOK_URL", ""),
		WebhookAPIKey:     getEnv("REPLY_WEBHOOK_API_KEY", ""),
		WebhookSenderID:   getEnvAsInt("REPLY_WEBHOOK_SENDER_ID", 0),
		WebhookReceiverID: getEnv("REPLY_WEBHOOK_RECEIVER_ID", ""),

		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ArchiveS3Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		CORSAllowedHeaders: getEnvAsList("CORS_ALLOWED_HEADERS"),
		CORSAllowedMethods: getEnvAsList("CORS_ALLOWED_METHODS"),
		CORSMaxAge:         getEnvAsDuration("CORS_MAX_AGE", 10*time.Minute),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		OperatorJWTSecret:  getEnv("OPERATOR_JWT_SECRET", ""),
	}
}

// AsksPatientName reports whether the booking flow should collect the
// patient's name instead of using DefaultPatientName.
func (c *Config) AsksPatientName() bool {
	return c.PatientNameMode == "ask"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsMap parses "key=value,key=value". Entries without "=" are skipped.
func getEnvAsMap(key string) map[string]string {
	out := map[string]string{}
	for _, part := range getEnvAsList(key) {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

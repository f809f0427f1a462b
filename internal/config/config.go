package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCalendarCredentials is returned when any of the three Google
// Calendar values is absent.
var ErrMissingCalendarCredentials = errors.New("Missing required Google Calendar credentials")

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Google Calendar service account
	GoogleClientEmail    string
	GooglePrivateKey     string
	GoogleCalendarID     string
	CalendarMaxResults   int64
	CalendarTimezone     string
	CalendarProxyURL     string
	CalendarFetchTimeout time.Duration

	// OAuth bootstrap (cmd/calendar-token)
	GoogleOAuthClientID     string
	GoogleOAuthClientSecret string
	GoogleOAuthRedirectURI  string

	// Form relays
	RelayProvider     string
	InquiryRelayURL   string
	BookingRelayURL   string
	BookingEmailURL   string
	RelayTimeout      time.Duration
	RelayAutoResponse string

	// Booking rules
	MaxGuestCount int

	// Visitor sessions
	SessionStore     string
	SessionTTL       time.Duration
	SessionTable     string
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	AWSRegion        string
	AWSAccessKeyID   string
	AWSSecretKey     string
	AWSEndpoint      string
	EmailProvider    string
	NotifyEmail      string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		GoogleClientEmail:    getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:     unescapeNewlines(getEnv("GOOGLE_PRIVATE_KEY", "")),
		GoogleCalendarID:     getEnv("GOOGLE_CALENDAR_ID", ""),
		CalendarMaxResults:   int64(getEnvAsInt("CALENDAR_MAX_RESULTS", 100)),
		CalendarTimezone:     getEnv("CALENDAR_TIMEZONE", "America/Toronto"),
		CalendarProxyURL:     getEnv("CALENDAR_PROXY_URL", ""),
		CalendarFetchTimeout: getEnvAsDuration("CALENDAR_FETCH_TIMEOUT", 0),

		GoogleOAuthClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleOAuthClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleOAuthRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),

		RelayProvider:     strings.ToLower(strings.TrimSpace(getEnv("RELAY_PROVIDER", "formsubmit"))),
		InquiryRelayURL:   getEnv("INQUIRY_RELAY_URL", "https://formsubmit.co/ajax/locuseventsinc@gmail.com"),
		BookingRelayURL:   getEnv("BOOKING_RELAY_URL", "https://formsubmit.co/ajax/locuseventsinc@gmail.com"),
		BookingEmailURL:   getEnv("BOOKING_EMAIL_RELAY_URL", "https://formsubmit.co/locuseventsinc@gmail.com"),
		RelayTimeout:      getEnvAsDuration("RELAY_TIMEOUT", 0),
		RelayAutoResponse: getEnv("RELAY_AUTORESPONSE", ""),

		MaxGuestCount: getEnvAsInt("MAX_GUEST_COUNT", 200),

		SessionStore:     strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		SessionTable:     getEnv("SESSION_TABLE", "venue_visits"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:      getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		NotifyEmail:      getEnv("NOTIFY_EMAIL", "locuseventsinc@gmail.com"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Locus Venue"),
	}
}

// CalendarCredentials are the service-account inputs the calendar proxy needs.
type CalendarCredentials struct {
	ClientEmail string
	PrivateKey  string
	CalendarID  string
}

// CalendarCredentials returns the configured calendar credentials.
func (c *Config) CalendarCredentials() CalendarCredentials {
	return CalendarCredentials{
		ClientEmail: c.GoogleClientEmail,
		PrivateKey:  c.GooglePrivateKey,
		CalendarID:  c.GoogleCalendarID,
	}
}

// Validate reports ErrMissingCalendarCredentials when any value is blank.
func (c CalendarCredentials) Validate() error {
	if strings.TrimSpace(c.ClientEmail) == "" || strings.TrimSpace(c.PrivateKey) == "" || strings.TrimSpace(c.CalendarID) == "" {
		return ErrMissingCalendarCredentials
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// unescapeNewlines turns the literal "\n" sequences that env files carry for
// PEM keys back into line breaks.
func unescapeNewlines(value string) string {
	return strings.ReplaceAll(value, `\n`, "\n")
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

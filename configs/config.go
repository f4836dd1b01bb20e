package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	PayKeeper PayKeeperConfig
	SMS       AfricaTalkingConfig
	Email     EmailConfig
	AMQP      AMQPConfig
	OIDC      OIDCConfig
	Admin     AdminConfig
	Log       LogConfig
	SeedFile  string
}

type ServerConfig struct {
	Port          string
	SessionSecret string
	SecureCookies bool
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	TimeZone string
}

type PayKeeperConfig struct {
	ServerURL string
	SecretKey string
}

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
	StaffEmail         string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// AdminConfig drives the staff dashboard poll loop. PollInterval never
// exceeds RecentWindow, otherwise orders could slip between two polls.
type AdminConfig struct {
	RecentWindow time.Duration
	PollInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then builds the configuration from the
// process environment.
func Load() Config {
	_ = godotenv.Load()

	admin := AdminConfig{
		RecentWindow: getDurationOrDefault("ADMIN_RECENT_WINDOW", 30*time.Second),
		PollInterval: getDurationOrDefault("ADMIN_POLL_INTERVAL", 10*time.Second),
	}
	if admin.PollInterval > admin.RecentWindow {
		admin.PollInterval = admin.RecentWindow
	}

	return Config{
		Server: ServerConfig{
			Port:          getEnvOrDefault("PORT", "8080"),
			SessionSecret: getEnvOrDefault("SESSION_SECRET", "change-me"),
			SecureCookies: getBoolOrDefault("SECURE_COOKIES", false),
		},
		Database: LoadDatabaseConfig(),
		PayKeeper: PayKeeperConfig{
			ServerURL: os.Getenv("PAYKEEPER_SERVER_URL"),
			SecretKey: os.Getenv("PAYKEEPER_SECRET_KEY"),
		},
		SMS:   LoadAfricaTalkingConfig(),
		Email: LoadEmailConfig(),
		AMQP: AMQPConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnvOrDefault("RABBITMQ_EXCHANGE", "dacha_events"),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		Admin: admin,
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		SeedFile: os.Getenv("SEED_FILE"),
	}
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:     getEnvOrDefault("POSTGRES_USER", "dacha"),
		Password: getEnvOrDefault("POSTGRES_PASSWORD", "dacha"),
		Name:     getEnvOrDefault("POSTGRES_DB", "dacha"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		TimeZone: getEnvOrDefault("DB_TIMEZONE", "Europe/Moscow"),
	}
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "eu-central-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		StaffEmail:         os.Getenv("STAFF_NOTIFY_EMAIL"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

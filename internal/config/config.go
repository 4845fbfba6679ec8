package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Booking  BookingConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMS      SMSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// BookingConfig holds the scheduling engine settings.
type BookingConfig struct {
	// CutoffMinutes is the minimum lead time before a slot may be booked.
	CutoffMinutes int
	// DefaultSlotMinutes is used when a doctor has no duration configured.
	DefaultSlotMinutes int
	// Timezone is the clinic-local zone all wall-clock templates refer to.
	Timezone string
	// ReminderInterval controls how often the reminder worker scans for
	// upcoming appointments.
	ReminderInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	Enabled  bool
	// AvailabilityTTL bounds how stale a cached availability day may be.
	AvailabilityTTL time.Duration
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	Enabled bool
}

type SMSConfig struct {
	GatewayURL string
	APIKey     string
	SenderName string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clinic_ops"),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Booking: BookingConfig{
			CutoffMinutes:      parseInt(getEnv("BOOKING_CUTOFF_MINUTES", "60"), 60),
			DefaultSlotMinutes: parseInt(getEnv("DEFAULT_SLOT_MINUTES", "30"), 30),
			Timezone:           getEnv("CLINIC_TIMEZONE", "Local"),
			ReminderInterval:   parseDuration(getEnv("REMINDER_INTERVAL", "15m"), 15*time.Minute),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			Enabled:         getEnv("REDIS_ENABLED", "false") == "true",
			AvailabilityTTL: parseDuration(getEnv("AVAILABILITY_CACHE_TTL", "30s"), 30*time.Second),
		},
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "appointment-events"),
			Enabled: getEnv("KAFKA_ENABLED", "false") == "true",
		},
		SMS: SMSConfig{
			GatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			APIKey:     getEnv("SMS_API_KEY", ""),
			SenderName: getEnv("SMS_SENDER_NAME", "Clinic"),
		},
	}

	return config
}

// Location resolves the configured clinic timezone.
func (c *Config) Location() *time.Location {
	if c.Booking.Timezone == "" || c.Booking.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using local\n", c.Booking.Timezone)
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		fmt.Printf("Warning: Invalid integer '%s', using default\n", s)
		return fallback
	}
	return n
}

func parseOrigins(s string) []string {
	if s == "" {
		return []string{}
	}

	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Auth       AuthConfig
	Gemini     GeminiConfig
	KV         KVConfig
	Database   DatabaseConfig
	Notify     NotifyConfig
	RabbitMQ   RabbitMQConfig
	PubSub     PubSubConfig
	Archive    ArchiveConfig
	Minio      MinioConfig
	GCS        GCSConfig
}

type AuthConfig struct {
	// LatencyMS is the artificial delay applied to login/sign-up, in
	// milliseconds. -1 selects the built-in default.
	LatencyMS int

	// HashPasswords enables bcrypt credential storage instead of the
	// plain comparable form used by the original mock flow.
	HashPasswords bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type KVConfig struct {
	// Backend selects the durable medium: "memory", "sqlite" or "postgres".
	Backend string

	// SQLitePath is the store database file for the sqlite backend.
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type NotifyConfig struct {
	// Backend selects the change broadcast medium: "memory", "rabbitmq"
	// or "pubsub".
	Backend string

	// Channel is the broadcast channel shared by every context.
	Channel string
}

type RabbitMQConfig struct {
	URL string
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type ArchiveConfig struct {
	// Backend selects the object-storage medium for archived gallery
	// images: "none", "minio" or "gcs".
	Backend string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Auth: AuthConfig{
			LatencyMS:     getEnvInt("AUTH_LATENCY_MS", -1),
			HashPasswords: getEnvBool("AUTH_HASH_PASSWORDS", false),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", ""),
		},
		KV: KVConfig{
			Backend:    getEnv("KV_BACKEND", "sqlite"),
			SQLitePath: getEnv("KV_SQLITE_PATH", "trendai.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "trendai"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "trendai_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Notify: NotifyConfig{
			Backend: getEnv("NOTIFY_BACKEND", "memory"),
			Channel: getEnv("NOTIFY_CHANNEL", "trendai-store-events"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", ""),
		},
		Archive: ArchiveConfig{
			Backend: getEnv("ARCHIVE_BACKEND", "none"),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "trendai-archive"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

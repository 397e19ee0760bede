package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Cloudinary CloudinaryConfig
	WhatsApp   WhatsAppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  int // minutes
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type WhatsAppConfig struct {
	Enabled bool
	DataDir string
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Server:     GetServerConfig(),
		Database:   GetDatabaseConfig(),
		Redis:      GetRedisConfig(),
		Auth:       GetAuthConfig(),
		Cloudinary: GetCloudinaryConfig(),
		WhatsApp:   GetWhatsAppConfig(),
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnv("SERVER_PORT", "8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "events"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetAuthConfig() AuthConfig {
	ttl, err := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_MINUTES", "1440"))
	if err != nil {
		panic(err)
	}

	return AuthConfig{
		JWTSecret: getEnv("AUTH_JWT_SECRET", "dev-secret"),
		TokenTTL:  ttl,
	}
}

func GetCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func GetWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{
		Enabled: getEnv("WHATSAPP_ENABLED", "false") == "true",
		DataDir: getEnv("WHATSAPP_DATA_DIR", "data"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

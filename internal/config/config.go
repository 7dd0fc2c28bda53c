package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort      string
	PublicURL       string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	JWTSecret       string
	FeedPageSize    int
	MemcachedAddr   string
	SMTPAddr        string
	SMTPFrom        string
	NotifyWorkers   int
	NotifyQueueSize int
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		PublicURL:       getEnv("PUBLIC_URL", "http://localhost:8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "quill"),
		DBPassword:      getEnv("DB_PASSWORD", "quill_dev_password"),
		DBName:          getEnv("DB_NAME", "quill"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		FeedPageSize:    getEnvInt("FEED_PAGE_SIZE", 10),
		MemcachedAddr:   getEnv("MEMCACHED_ADDR", "localhost:11211"),
		SMTPAddr:        getEnv("SMTP_ADDR", "localhost:25"),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@quill.local"),
		NotifyWorkers:   getEnvInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

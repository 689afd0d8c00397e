package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RedisHost      string
	RedisPort      string
	SessionSecret  string
	GinMode        string
	OpenAIAPIKey   string
	AdvisorTimeout time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "taskdeck"),
		DBPassword:     getEnv("DB_PASSWORD", "taskdeck"),
		DBName:         getEnv("DB_NAME", "taskdeck"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		AdvisorTimeout: getEnvSeconds("ADVISOR_TIMEOUT_SECONDS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	value := os.Getenv(key)
	if value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}

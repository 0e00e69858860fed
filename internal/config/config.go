package config

import "os"

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	CacheDir   string
	DataPath   string
	ChartsDir  string
	Port       string
	FredAPIKey string
}

func LoadConfig() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		CacheDir:   getEnv("CACHE_DIR", "data/cache"),
		DataPath:   getEnv("DATA_PATH", ""),
		ChartsDir:  getEnv("CHARTS_DIR", "charts"),
		Port:       getEnv("PORT", "8080"),
		FredAPIKey: getEnv("FRED_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import "os"

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string
}

func Load() (*Config, error) {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:    getEnv("MONGODB_DB", "booklend"),
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

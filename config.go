package main

import (
	"errors"
	"os"
)

// Config holds all process-wide settings, read once at startup and
// passed explicitly to the components that need them.
type Config struct {
	Port      string
	JWTSecret string
	DBHost    string
	DBUser    string
	DBPass    string
	DBName    string
	DBPort    string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:      os.Getenv("PORT"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		DBHost:    os.Getenv("DB_HOST"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBName:    os.Getenv("DB_NAME"),
		DBPort:    os.Getenv("DB_PORT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBPass == "" || cfg.DBName == "" || cfg.DBPort == "" {
		return Config{}, errors.New("database environment variables missing, check .env")
	}

	return cfg, nil
}

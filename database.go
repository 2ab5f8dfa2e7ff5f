package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg Config) error {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort,
	)

	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey, which the handlers branch on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Event{}, &EventParticipant{}, &EventComment{}, &EventShare{}); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	DB = db
	log.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("database connected and migrated")
	return nil
}

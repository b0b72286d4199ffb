package services

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// LoadEnvVariables loads a local .env file when present. Absence is normal
// in deployed environments.
func LoadEnvVariables(log zerolog.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}
}

package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from .env into the process environment. Missing
// files are fine in deployed environments where config comes from the host.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

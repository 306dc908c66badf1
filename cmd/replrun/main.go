package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Values from .env feed both ${VAR} config expansion and the token env
	// fallback. A missing .env is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

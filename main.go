package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/hh-recommender/cmd"
)

func main() {
	// A missing .env file is fine. Settings may come from the environment or the config file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log/slog"

	"github.com/agenthands/upsampler/internal/cmd"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using the environment as is")
	}
	cmd.Execute()
}

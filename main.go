package main

import (
	"os"

	"transfers/cmd"
	"transfers/config"
	"transfers/pkg/logger"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cnf.AppName, cnf.LogLevel)

	if err := cmd.Execute(cnf); err != nil {
		logger.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}

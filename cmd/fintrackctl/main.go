// Command fintrackctl runs operator tasks against the Fintrack database.
package main

import (
	"os"

	"fintrack/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Fatalf("fintrackctl: %v", err)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		var ece *exitCodeError
		if errors.As(err, &ece) {
			fmt.Fprintln(os.Stderr, ece.Error())
			os.Exit(ece.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
}

package main

import (
	"os"

	"github.com/wolfman30/survey-assistant/cmd/mainconfig"
)

func main() {
	mainconfig.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

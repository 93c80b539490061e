package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/avdave/steamwatch/core/cmd"
	"github.com/avdave/steamwatch/internal/app"
)

func main() {
	// Optional; real deployments provide env directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("steamwatch: %v", err)
	}
}

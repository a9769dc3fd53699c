package main

import (
	"flag"
	"log"

	"feeds/internal/app"
	"feeds/internal/config"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file; empty to use defaults and FEEDS_* env only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: could not start application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

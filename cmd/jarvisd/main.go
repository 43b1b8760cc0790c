package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/icmoura/jarvis/internal/config"
	"github.com/icmoura/jarvis/internal/logger"
	"github.com/icmoura/jarvis/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		path = os.Getenv("JARVIS_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("jarvisd: %v", err)
	}

	if err := logger.Init(cfg.Log.Dir); err != nil {
		log.Fatalf("jarvisd: init logger: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("jarvisd: %v", err)
	}

	logger.Info("jarvisd listening on %s", cfg.Server.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

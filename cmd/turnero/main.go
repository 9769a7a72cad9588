package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/turnero/internal/config"
	"github.com/dropDatabas3/turnero/internal/http/server"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

func main() {
	configPath := flag.String("config", "", "Path al YAML de configuración (opcional)")
	flag.Parse()

	// .env es opcional; las env vars pisan el YAML
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "turnero"})
	defer func() { _ = logger.L().Sync() }()

	handler, cleanup, err := server.BuildHandler(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("wiring failed", logger.Err(err))
	}
	defer cleanup()

	if err := server.Run(cfg, handler); err != nil {
		logger.L().Fatal("server stopped", logger.Err(err))
	}
}

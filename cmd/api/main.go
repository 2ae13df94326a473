package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stockboard/internal"
	"stockboard/internal/backend"
	"stockboard/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	gin.SetMode(cfg.API.GinMode)

	backendCfg := backend.DefaultConfig()
	backendCfg.MaxUploadBytes = int64(cfg.API.MaxUploadMB) << 20
	backendCfg.MaxConcurrentParses = int64(cfg.API.MaxConcurrentParses)
	backendCfg.RiskFreeRate = cfg.API.RiskFreeRate

	server := backend.NewServer(backendCfg, backend.NewStore())

	log.Fatal(server.Start(":" + cfg.API.Port))
}

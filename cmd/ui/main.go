package main

import (
	"log"

	"github.com/joho/godotenv"

	"stockboard/adapters/api"
	"stockboard/internal"
	"stockboard/internal/charts"
	"stockboard/internal/config"
	"stockboard/ui"
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

	style, err := charts.LoadStyle(cfg.Dashboard.ChartStyleFile)
	if err != nil {
		log.Fatalf("Failed to load chart style: %v", err)
	}

	clientConfig := api.DefaultClientConfig()
	clientConfig.BaseURL = cfg.Backend.URL
	clientConfig.Timeout = cfg.Backend.Timeout
	client, err := api.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create analysis client: %v", err)
	}

	app, err := ui.NewApp(ui.Config{
		Port:            cfg.Server.Port,
		BackendTimeout:  cfg.Backend.Timeout,
		PieDemoFallback: cfg.Dashboard.PieDemoFallback,
		Style:           style,
	}, client)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting dashboard on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start())
}

package main

import (
	"flag"
	"log"
	"runtime"

	"implot3d/internal/demo"
	"implot3d/internal/logger"
	"implot3d/pkg/config"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	mode := flag.String("mode", "", "Override render mode (auto, wboit, opaque)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
	}
	if *mode != "" {
		cfg.Render.Mode = *mode
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid -mode: %v", err)
		}
	}

	appLogger := logger.NewLogger(cfg.Log.Level)
	if cfg.Log.File != "" {
		if appLogger, err = logger.NewMultiLogger(cfg.Log.Level, cfg.Log.File); err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
	}
	defer appLogger.Close()
	appLogger.Info("Starting implot3d demo...")

	app, err := demo.NewApp(cfg, *configPath, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize demo: %v", err)
	}

	appLogger.Info("Renderer initialized, starting render loop...")
	app.Run()
}

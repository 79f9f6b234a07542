package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-study-assist-be/internal/bootstrap"
	"ai-study-assist-be/internal/config"
	"ai-study-assist-be/internal/server"
	"ai-study-assist-be/internal/tracer"
	"ai-study-assist-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 3. Initialize Database (only when annotations live in postgres)
	var gormDB *gorm.DB
	if cfg.Annotation.Store == config.AnnotationStorePostgres {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction(), database.DefaultPool)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown()
	}()

	printBanner(cfg)

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func printBanner(cfg *config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgHiBlack)

	title.Println("AI Study Assist API")
	label.Print("  env         ")
	color.Green(cfg.App.Environment)
	label.Print("  annotations ")
	color.Green(cfg.Annotation.Store)
	label.Print("  learning api ")
	color.Green(cfg.Upstream.BaseURL)
	if cfg.App.DebugRoutes {
		color.Yellow("  debug routes enabled")
	}
}

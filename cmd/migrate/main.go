package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/fixora/complaintdesk/infrastructure/adapter/postgres"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/migrations"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	lg := logger.NewStructuredLogger(logger.LoggerConfig{Level: "info", Format: "text", ServiceName: "migrate"})

	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	m := &migrator{db: db, fsys: migrations.FS, logger: lg}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	files, err := loadMigrationFiles(migrations.FS)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		if err := m.applyUp(ctx, files); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		lg.Info(ctx, "Migration up completed successfully", nil)
	case "down":
		if err := m.applyDown(ctx, files); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		lg.Info(ctx, "Migration down completed successfully", nil)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

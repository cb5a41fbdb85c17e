// Command cleanup_orphans removes admin role rows whose identity no longer exists.
// It is the recovery path when every admin identity has been deleted and nobody can
// sign in to approve a replacement.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fixora/complaintdesk/infrastructure/config"
	"github.com/fixora/complaintdesk/infrastructure/container"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the sweep")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app, err := container.New(ctx, cfg, "cleanup-orphans")
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.Close()

	res, err := app.Admin.CleanupOrphanedAdminRoles(ctx)
	if err != nil {
		app.Logger.Error(ctx, "Orphaned role cleanup failed", err, nil)
		_ = app.Close()
		os.Exit(1)
	}

	fmt.Println(res.Message)
	for _, id := range res.UserIDs {
		fmt.Printf("  removed admin role of %s\n", id)
	}
}

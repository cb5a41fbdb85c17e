// Command create_admin bootstraps the first admin from the command line. It refuses
// once any admin exists, exactly like POST /v1/admin/bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fixora/complaintdesk/application/port/inbound"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/config"
	"github.com/fixora/complaintdesk/infrastructure/container"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Administrator", "admin full name")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: ADMIN_PASSWORD=... create_admin -email admin@example.edu [-name 'Full Name']")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	app, err := container.New(ctx, cfg, "create-admin")
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.Close()

	res, err := app.Admin.BootstrapFirstAdmin(ctx, inbound.BootstrapAdminRequest{
		Email:    *email,
		Password: password,
		FullName: *name,
	})
	if err != nil {
		if domainerr.IsKind(err, domainerr.KindAlreadyInitialized) {
			fmt.Fprintln(os.Stderr, "An admin already exists. Submit an access request and have an admin approve it.")
			os.Exit(1)
		}
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Admin created\n  email: %s\n  id:    %s\n", *email, res.UserID)
}

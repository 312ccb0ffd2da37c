package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storepos/internal/app"
	"storepos/internal/config"
	"storepos/internal/database"
	"storepos/internal/terminal"
)

func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, db, nil)
	if err := a.Bootstrap(ctx); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	con := terminal.NewConsole(os.Stdin, os.Stdout)
	term := terminal.New(con, terminal.Deps{
		Checkout:  a.Engine,
		Users:     a.Services.Users,
		Catalog:   a.Services.Catalog,
		Customers: a.Services.Customers,
		Reports:   a.Services.Reports,
		Reorders:  a.Services.Reorders,
		Audit:     a.Services.Audit,
	})

	err = term.Run(ctx)
	switch {
	case err == nil, errors.Is(err, terminal.ErrClosed), errors.Is(err, context.Canceled):
	case errors.Is(err, terminal.ErrLoginFailed):
		log.Println("Exiting due to failed login.")
		os.Exit(1)
	default:
		log.Fatalf("Terminal stopped: %v", err)
	}
}

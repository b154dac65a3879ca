// Package main provides an operator tool that imports stores items from a CSV
// file and prints bcrypt hashes for ADMIN_PASSWORD_HASH.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"confhub/internal/app"
	"confhub/internal/config"
	"confhub/internal/domain/auth"
	"confhub/internal/infrastructure/export"
	"confhub/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	itemsFile := flag.String("items", "", "CSV file of stores items to import")
	hash := flag.String("hash", "", "print the bcrypt hash of this password and exit")
	flag.Parse()

	if *hash != "" {
		h, err := auth.HashPassword(*hash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(h))
		return
	}

	if *itemsFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	f, err := os.Open(*itemsFile)
	if err != nil {
		log.Fatalw("failed to open items file", "path", *itemsFile, "error", err)
	}
	defer f.Close()

	items, err := export.ReadItemsCSV(f)
	if err != nil {
		log.Fatalw("failed to parse items file", "path", *itemsFile, "error", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to connect", "error", err)
	}
	defer a.Close()

	res, err := a.Stores.Items.Import(ctx, items)
	if err != nil {
		log.Fatalw("import failed", "created", res.Created, "error", err)
	}

	log.Infow("items imported",
		"created", res.Created,
		"skipped", len(res.Skipped),
		"skipped_codes", res.Skipped)
}

// seed loads the fixed roles and demo data into the portal database.
package main

import (
	"context"
	"fmt"
	"os"

	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/security"
	"portal/internal/seed"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var fixturesPath string
	var force bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&fixturesPath, "fixtures", "", "YAML fixtures file (default: built-in demo data)")
	flagSet.BoolVar(&force, "force", false, "seed even when users already exist")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.LogLevel)

	fixtures, err := seed.Load(fixturesPath)
	if err != nil {
		return err
	}

	db, err := database.NewConnection(cfg.DB, cfg.Production())
	if err != nil {
		return err
	}
	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	seeder := seed.NewSeeder(repository.New(db), rbac.NewRegistry(), security.NewHasher(cfg.BcryptCost), logger)
	res, err := seeder.Run(context.Background(), fixtures, force)
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.Info("nothing seeded; pass --force to seed anyway")
	}
	return nil
}

// Command shopctl runs the maintenance jobs that do not belong in the API
// server: schema migration, demo seeding, the nightly forecast refresh and
// supplier refill ordering.
package main

import (
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/stocksmith/shopd/internal/config"
	"github.com/stocksmith/shopd/internal/repository"
	"github.com/stocksmith/shopd/internal/repository/postgres"
	"github.com/stocksmith/shopd/internal/service"
	"github.com/stocksmith/shopd/internal/supplier"
	"github.com/stocksmith/shopd/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func openRepos(c *cli.Context) (repository.Repos, *sqlx.DB, error) {
	db, err := openDB(c)
	if err != nil {
		return repository.Repos{}, nil, err
	}
	return postgres.NewRepos(db), db, nil
}

func newRegistry() *supplier.Registry {
	cfg := config.Load()
	registry := supplier.NewRegistry()
	registry.Register("default", supplier.NewHTTPClient("default", cfg.Supplier))
	return registry
}

func runMigrate(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(c.Context, db); err != nil {
		return err
	}
	logger.Log.Info().Msg("schema applied")
	return nil
}

func runForecast(c *cli.Context) error {
	repos, db, err := openRepos(c)
	if err != nil {
		return err
	}
	defer db.Close()
	forecastService := service.NewForecastService(repos)
	return forecastService.RefreshAllForecasts(c.Context)
}

func runRefill(c *cli.Context) error {
	repos, db, err := openRepos(c)
	if err != nil {
		return err
	}
	defer db.Close()
	orderService := service.NewOrderService(repos, newRegistry())
	ordered, err := orderService.OrderRefill(c.Context, c.Int64("supplier-id"))
	for _, sp := range ordered {
		logger.Log.Info().Str("sku", sp.SKU).Msg("ordered")
	}
	return err
}

func runSeed(c *cli.Context) error {
	repos, db, err := openRepos(c)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := newRegistry()
	catalogService := service.NewCatalogService(repos, registry)

	sup, err := catalogService.CreateSupplier(c.Context, "Default Wholesale", "default", time.Tuesday)
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	logger.Log.Info().Int64("supplier_id", sup.ID).Msg("seeded supplier")
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}
	logger.SetLevel("release")

	app := &cli.App{
		Name:  "shopctl",
		Usage: "Shop backend maintenance jobs",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
			{
				Name:   "seed",
				Usage:  "Seed a default supplier",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runSeed,
			},
			{
				Name:   "forecast",
				Usage:  "Recompute out-of-stock forecasts for all products",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runForecast,
			},
			{
				Name:  "refill",
				Usage: "Order refills for products running out before the delivery after next",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Int64Flag{
						Name:     "supplier-id",
						Usage:    "Supplier to order from",
						Required: true,
					},
				},
				Action: runRefill,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

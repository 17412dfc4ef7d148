// Command coupon-ingest imports coupon codes from gzip-compressed lists,
// one code per line, into the coupon catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/internal/storage/postgres"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		exclusive   string
		strict      bool
		dryRun      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz code lists")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&exclusive, "exclusive", "", "comma-separated codes that cannot be combined")
	flag.BoolVar(&strict, "strict", false, "fail on the first malformed code instead of skipping it")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := ingestConfig{Strict: strict}
	for _, code := range strings.Split(exclusive, ",") {
		if code = strings.TrimSpace(code); code != "" {
			cfg.Exclusive = append(cfg.Exclusive, strings.ToUpper(code))
		}
	}

	if err := run(ctx, dataDir, databaseURL, cfg, dryRun); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, cfg ingestConfig, dryRun bool) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list code files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.gz files in %s", dataDir)
	}

	slog.Info("scanning code lists", slog.Int("files", len(files)))
	ing := newIngester(cfg)
	if err := ing.scanFiles(ctx, files); err != nil {
		return errors.Wrap(err, "scan code lists")
	}

	descriptors := ing.descriptors()
	stats := ing.stats()
	slog.Info("scan complete",
		slog.Int("codes", len(descriptors)),
		slog.Uint64("duplicates", stats.Duplicates),
		slog.Uint64("malformed", stats.Malformed),
	)
	if dryRun || len(descriptors) == 0 {
		return nil
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewCouponRepository(pool)
	for start := 0; start < len(descriptors); start += batchSize {
		end := min(start+batchSize, len(descriptors))
		if err := repo.UpsertMany(ctx, descriptors[start:end]); err != nil {
			return errors.Wrap(err, "write coupons")
		}
		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(descriptors)))
	}
	return nil
}

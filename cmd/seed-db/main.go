// Command seed-db creates the schema and seeds periods, the default coupon
// catalog and an API key.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/db"
	"github.com/xenking/kart-pricing/internal/domain/auth"
	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		periodsFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&periodsFile, "periods-file", "", "path to periods JSON file (embedded defaults when empty)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or PRICING_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or PRICING_API_KEY_PEPPER env)")
	flag.Parse()

	databaseURL = orEnv(databaseURL, "DATABASE_URL")
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	apiKey = orEnv(apiKey, "PRICING_SEED_API_KEY")
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or PRICING_SEED_API_KEY")
		os.Exit(1)
	}
	apiKeyPepper = orEnv(apiKeyPepper, "PRICING_API_KEY_PEPPER")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, periodsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func orEnv(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

func run(ctx context.Context, databaseURL, periodsFile, apiKey, pepper string) error {
	data := db.DefaultPeriods
	if periodsFile != "" {
		slog.Info("reading periods file", slog.String("path", periodsFile))
		var err error
		if data, err = os.ReadFile(periodsFile); err != nil {
			return errors.Wrap(err, "read periods file")
		}
	}
	periods, err := parsePeriods(data)
	if err != nil {
		return errors.Wrap(err, "parse periods")
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	periodRepo := postgres.NewPeriodRepository(pool)
	for _, p := range periods {
		if err := periodRepo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert period %s", p.Name())
		}
		slog.Info("upserted period", slog.String("name", p.Name()))
	}

	descriptors := coupon.DefaultCatalog().Descriptors()
	if err := postgres.NewCouponRepository(pool).UpsertMany(ctx, descriptors); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	slog.Info("upserted coupons", slog.Int("count", len(descriptors)))

	if err := postgres.NewAPIKeyRepository(pool).Upsert(ctx, auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.Hash([]byte(pepper), apiKey),
		Name:    "Default test key",
		Scopes:  []string{"price"},
	}); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	slog.Info("upserted API key", slog.String("id", "default"))

	return nil
}

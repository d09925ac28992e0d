// Command prune-cache evicts resolution cache entries whose entity no
// longer exists. The resolvers already evict lazily on read; this sweeps
// the rest and is intended for an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	authorrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/author"
	editionrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/edition"
	cacherepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/resolutioncache"
	workrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/work"
	"github.com/mkovalev/mybooks-backend/internal/app"
	"github.com/mkovalev/mybooks-backend/internal/config"
	"github.com/mkovalev/mybooks-backend/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	cache := cacherepo.New(pool)

	resolvers := []interface {
		PruneStaleEntries(ctx context.Context) (int, error)
	}{
		resolver.Works(logger, workrepo.New(pool), cache),
		resolver.Editions(logger, editionrepo.New(pool), cache),
		resolver.Authors(logger, authorrepo.New(pool), cache),
	}

	evicted := 0
	for _, r := range resolvers {
		n, err := r.PruneStaleEntries(ctx)
		if err != nil {
			logger.Error("prune failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		evicted += n
	}

	logger.Info("prune completed", slog.Int("evicted", evicted))
}

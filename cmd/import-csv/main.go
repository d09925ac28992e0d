// Command import-csv imports a library export file without going through
// the HTTP server. It wires the same resolvers and import service as the
// API, so results are identical to an upload.
//
// Usage:
//
//	import-csv --file=goodreads_library_export.csv
//
// Exit codes: 0 = success, 1 = error (including a rejected CSV).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	authorrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/author"
	editionrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/edition"
	cacherepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/resolutioncache"
	workrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/work"
	workauthorrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/workauthor"
	"github.com/mkovalev/mybooks-backend/internal/app"
	"github.com/mkovalev/mybooks-backend/internal/config"
	"github.com/mkovalev/mybooks-backend/internal/resolver"
	"github.com/mkovalev/mybooks-backend/internal/service/importer"
)

func main() {
	file := flag.String("file", "", "path to the CSV export")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-csv --file=library_export.csv")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("read export file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	works := workrepo.New(pool)
	editions := editionrepo.New(pool)
	authors := authorrepo.New(pool)
	workAuthors := workauthorrepo.New(pool)
	cache := cacherepo.New(pool)

	svc := importer.NewService(
		logger,
		resolver.Works(logger, works, cache),
		resolver.Editions(logger, editions, cache),
		resolver.Authors(logger, authors, cache),
		editions, authors, workAuthors,
		cfg.Import.MaxRows,
	)

	result, err := svc.ImportCSV(ctx, string(data))
	if err != nil {
		logger.Error("import rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import completed",
		slog.Int("rows", result.Rows),
		slog.Int("imported", result.Imported),
		slog.Int("issues", len(result.Issues)),
	)
	for _, issue := range result.Issues {
		logger.Warn("row skipped",
			slog.Int("line", issue.Line),
			slog.String("reason", issue.Reason),
		)
	}
}

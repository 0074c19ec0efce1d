package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/search"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/store"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/config"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config path] <folder-of-indexes>\n", os.Args[0])
		os.Exit(1)
	}
	indexDir := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	idx, catalog, stats, err := store.Load(indexDir)
	if err != nil {
		slog.Error("index load failed", "index_dir", indexDir, "error", err)
		os.Exit(1)
	}
	slog.Info("index loaded",
		"index_dir", indexDir,
		"documents", stats.Documents,
		"terms", stats.Terms,
	)

	weights := search.Weights{
		Alpha: cfg.Ranking.Alpha,
		Beta:  cfg.Ranking.Beta,
		Gamma: cfg.Ranking.Gamma,
	}
	engine := search.NewEngine(idx, catalog, stats, weights)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		slog.Error("query loop failed", "error", err)
		os.Exit(1)
	}
}

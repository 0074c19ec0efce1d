package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/index"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/store"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/config"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config path] <folder-of-documents> <folder-of-indexes>\n", os.Args[0])
		os.Exit(1)
	}
	corpusDir, indexDir := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	idx, catalog, stats, err := index.Build(context.Background(), corpusDir, cfg.Indexer.EffectiveWorkers())
	if err != nil {
		slog.Error("index build failed", "corpus_dir", corpusDir, "error", err)
		os.Exit(1)
	}
	if err := store.Save(indexDir, idx, catalog, stats); err != nil {
		slog.Error("index save failed", "index_dir", indexDir, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Total number of documents: %d\n", stats.Documents)
	fmt.Printf("Total number of tokens: %d\n", stats.Tokens)
	fmt.Printf("Total number of terms: %d\n", stats.Terms)
}

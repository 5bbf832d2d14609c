// Package cli provides the cobra command tree for LexSearch.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/lexsearch-cli/internal/chunker"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch-cli/internal/core/services"
	"github.com/custodia-labs/lexsearch-cli/internal/embedder"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
	"github.com/custodia-labs/lexsearch-cli/internal/segmenter"
	"github.com/custodia-labs/lexsearch-cli/internal/titles"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by wireServices (or by tests).
var (
	ingestService driving.IngestService
	searchService driving.SearchService
	adminService  driving.AdminService

	index   driven.VectorIndex
	backend driven.EmbeddingBackend
)

// Persistent flags.
var (
	flagVerbose   bool
	flagEphemeral bool
	flagBackend   string
	flagMarkers   string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "lexsearch",
	Short: "Index and search hierarchically structured legal statutes",
	Long: `LexSearch ingests extracted statute text, segments it into its
Chapter/Article/Clause/Point structure, and indexes context-enriched
chunks for semantic retrieval.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return wireServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if index != nil {
			index.Close() //nolint:errcheck
		}
		if backend != nil {
			backend.Close() //nolint:errcheck
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "use an in-memory index instead of the SQLite store")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "embedding backend: ollama or openai (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagMarkers, "markers", "", "marker language: en or vi (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.lexsearch/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// wireServices builds the adapter stack from config and flags and injects
// the core services. Flags override config values.
func wireServices() error {
	if ingestService != nil {
		// Already wired (tests inject their own services).
		return nil
	}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend, err = buildBackend(cfg)
	if err != nil {
		return err
	}

	var registry driven.DocumentRegistry
	if flagEphemeral {
		index = memory.NewIndex()
	} else {
		dataDir := flagDataDir
		if dataDir == "" {
			dataDir = cfg.GetString("index.data_dir")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		index = store
		registry = store
	}

	markers := flagMarkers
	if markers == "" {
		markers = cfg.GetString("segmenter.markers")
	}
	seg := segmenter.New(segmenter.WithMarkers(segmenter.ByName(markers)))

	resolver, err := titles.NewResolver()
	if err != nil {
		return fmt.Errorf("loading titles asset: %w", err)
	}

	var procOpts []embedder.Option
	if n := cfg.GetInt("embedding.batch_size"); n > 0 {
		procOpts = append(procOpts, embedder.WithBatchSize(n))
	}
	if n := cfg.GetInt("embedding.requests_per_second"); n > 0 {
		procOpts = append(procOpts, embedder.WithRateLimit(float64(n)))
	}
	processor := embedder.New(backend, procOpts...)

	var chunkerOpts []chunker.Option
	if n := cfg.GetInt("chunker.article_threshold"); n > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithArticleThreshold(n))
	}
	if n := cfg.GetInt("chunker.clause_threshold"); n > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithClauseThreshold(n))
	}

	ingestOpts := []services.IngestOption{services.WithChunkerOptions(chunkerOpts...)}
	if registry != nil {
		ingestOpts = append(ingestOpts, services.WithRegistry(registry))
	}

	ingestService = services.NewIngestService(seg, processor, index, resolver, ingestOpts...)
	searchService = services.NewSearchService(backend, index)
	adminService = services.NewAdminService(index, registry)
	return nil
}

// buildBackend selects the embedding backend from the flag or config.
func buildBackend(cfg driven.ConfigStore) (driven.EmbeddingBackend, error) {
	name := flagBackend
	if name == "" {
		name = cfg.GetString("embedding.backend")
	}

	switch name {
	case "openai":
		return openai.NewBackend(openai.Config{
			APIKey:  cfg.GetString("openai.api_key"),
			BaseURL: cfg.GetString("openai.base_url"),
			Model:   cfg.GetString("openai.model"),
		})
	case "", "ollama":
		return ollama.NewBackend(ollama.Config{
			BaseURL:    cfg.GetString("ollama.base_url"),
			Model:      cfg.GetString("ollama.model"),
			Dimensions: cfg.GetInt("ollama.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", name)
	}
}

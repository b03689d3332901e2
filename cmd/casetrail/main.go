package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/analysis/heuristic"
	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/analysis/remote"
	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/storage/attachments"
	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/casetrail-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/core/services"
	"github.com/custodia-labs/casetrail-cli/internal/extractors"
	"github.com/custodia-labs/casetrail-cli/internal/extractors/attachment"
	"github.com/custodia-labs/casetrail-cli/internal/extractors/email"
	"github.com/custodia-labs/casetrail-cli/internal/extractors/record"
	"github.com/custodia-labs/casetrail-cli/internal/postprocessors"
	"github.com/custodia-labs/casetrail-cli/internal/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "casetrail: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	attachDir := cfg.GetString("storage.attachment_dir")
	if attachDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		attachDir = filepath.Join(home, ".casetrail", "attachments")
	}
	attachStore, err := attachments.New(attachDir)
	if err != nil {
		return fmt.Errorf("opening attachment store: %w", err)
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("building analyzer: %w", err)
	}

	router := extractors.NewRouter(email.New(), record.New(), attachment.New())
	matcher := services.NewMatcherService(router)
	timeline := services.NewTimelineService(store.DocumentStore(), attachStore, matcher, attachDir)
	ingest := services.NewIngestService(validation.New(), store.DocumentStore(), pipeline, timeline, analyzer)

	return cli.Execute(ingest, timeline)
}

// buildPipeline assembles the post-processing chain from config.
func buildPipeline(cfg driven.ConfigStore) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	chunkerCfg := map[string]any{}
	if target := cfg.GetInt("chunker.target_tokens"); target > 0 {
		chunkerCfg["target_tokens"] = target
	}
	if max := cfg.GetInt("chunker.max_tokens"); max > 0 {
		chunkerCfg["max_tokens"] = max
	}
	if overlap := cfg.GetInt("chunker.min_overlap_tokens"); overlap > 0 {
		chunkerCfg["min_overlap_tokens"] = overlap
	}

	chunkerProc, err := registry.Build("chunker", chunkerCfg)
	if err != nil {
		return nil, err
	}

	return postprocessors.NewPipeline(chunkerProc), nil
}

// buildAnalyzer picks the analysis backend: a remote service when one
// is configured, the built-in heuristic otherwise.
func buildAnalyzer(cfg driven.ConfigStore) (driven.Analyzer, error) {
	baseURL := cfg.GetString("analyzer.base_url")
	if baseURL == "" {
		return heuristic.New(), nil
	}

	remoteCfg := remote.Config{
		BaseURL: baseURL,
		APIKey:  cfg.GetString("analyzer.api_key"),
	}
	if timeout := cfg.GetInt("analyzer.timeout_seconds"); timeout > 0 {
		remoteCfg.Timeout = time.Duration(timeout) * time.Second
	}

	return remote.New(remoteCfg)
}

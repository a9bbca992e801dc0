// Command importer bulk-loads field notes from a CSV file. The file is
// uploaded to the platform, parsed by its extraction integration, and
// the resulting rows are imported in small batches with a pause between
// full batches so the platform is not hammered.
//
// Usage:
//
//	importer -file notes.csv [-batch-size 5] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/llm"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/platform"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/config"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/pipeline"
)

// extractionSchema describes the note fields the platform should pull
// out of each CSV row.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"entries": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":                  map[string]any{"type": "string"},
					"notes":                  map[string]any{"type": "string"},
					"description":            map[string]any{"type": "string"},
					"date":                   map[string]any{"type": "string", "format": "date"},
					"time":                   map[string]any{"type": "string"},
					"weather":                map[string]any{"type": "string"},
					"temperature":            map[string]any{"type": "string"},
					"location_name":          map[string]any{"type": "string"},
					"address":                map[string]any{"type": "string"},
					"city":                   map[string]any{"type": "string"},
					"state":                  map[string]any{"type": "string"},
					"country":                map[string]any{"type": "string"},
					"human_impact":           map[string]any{"type": "string"},
					"climate_change_impacts": map[string]any{"type": "string"},
					"tags":                   map[string]any{"type": "string"},
				},
			},
		},
	},
}

// platformLoader persists batches through the platform's bulk endpoint.
type platformLoader struct {
	client *platform.Client
}

func (l platformLoader) LoadBatch(ctx context.Context, notes []domain.FieldNote) error {
	return l.client.BulkCreateFieldNotes(ctx, notes)
}

// discardLoader is the dry-run sink.
type discardLoader struct{}

func (discardLoader) LoadBatch(context.Context, []domain.FieldNote) error { return nil }

func main() {
	file := flag.String("file", "", "path to the CSV file to import (required)")
	batchSize := flag.Int("batch-size", 0, "rows per batch (defaults to IMPORT_BATCH_SIZE)")
	dryRun := flag.Bool("dry-run", false, "transform rows but do not persist them")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *batchSize > 0 {
		cfg.ImportBatchSize = *batchSize
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsForTesting() // importer is one-shot, nothing scrapes it

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformAppID, cfg.PlatformAPIKey,
		cfg.PlatformTimeout, cfg.PlatformRetryMax, logger)

	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		base := llm.NewGeocoder(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.GeocodeTimeout, logger)
		geocoder = llm.NewCachedGeocoder(base, cfg.GeocodeCacheSize, metrics)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fileURL, err := client.UploadFile(ctx, filepath.Base(*file), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload file: %v\n", err)
		os.Exit(1)
	}
	logger.Info("file uploaded", "url", fileURL)

	var extracted struct {
		Entries []domain.FieldNoteDraft `json:"entries"`
	}
	if err := client.ExtractFromFile(ctx, fileURL, extractionSchema, &extracted); err != nil {
		fmt.Fprintf(os.Stderr, "extract rows: %v\n", err)
		os.Exit(1)
	}
	logger.Info("rows extracted", "count", len(extracted.Entries))

	var loader pipeline.BatchLoader = platformLoader{client: client}
	if *dryRun {
		loader = discardLoader{}
	}

	p := pipeline.New(
		pipeline.NewSliceExtractor(extracted.Entries),
		pipeline.NewNoteTransformer(geocoder, logger),
		loader,
		logger, metrics,
		cfg.ImportBatchSize, cfg.ImportBatchDelay,
	)

	summary, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed after %d notes: %v\n", summary.Imported, err)
		os.Exit(1)
	}

	mode := "imported"
	if *dryRun {
		mode = "validated"
	}
	fmt.Printf("%s %d notes in %d batches (%d skipped)\n", mode, summary.Imported, summary.Batches, summary.Skipped)
}

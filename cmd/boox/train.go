package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/config"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/ingestion"
	"github.com/poiesic/boox/storage"
	"github.com/poiesic/boox/storage/badger"
)

// defaultFeature is indexed when neither flags nor configuration name a feature.
const defaultFeature = "text"

func trainCommand() *cli.Command {
	return &cli.Command{
		Name:      "train",
		Usage:     "Train a dataset and save the trained state",
		ArgsUsage: "<source> [destination]",
		Action:    trainAction,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "id",
				Aliases: []string{"i"},
				Usage:   "Field to use as document ID",
				Value:   core.DefaultIDField,
			},
			&cli.StringSliceFlag{
				Name:    "features",
				Aliases: []string{"f"},
				Usage:   "Fields to index for search",
			},
			&cli.StringSliceFlag{
				Name:    "attributes",
				Aliases: []string{"a"},
				Usage:   "Fields to include as-is",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Write the state to this BadgerDB directory instead of a snapshot file",
			},
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N datasets",
				Value: 100,
			},
		}, commonFlags()...),
	}
}

func trainAction(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if c.NArg() < 1 {
		return fmt.Errorf("source dataset is required")
	}

	cwd := c.String("cwd")
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("id") || cfg.Dataset.ID == "" {
		cfg.Dataset.ID = c.String("id")
	}
	if c.IsSet("features") {
		cfg.Dataset.Features = c.StringSlice("features")
	}
	if c.IsSet("attributes") {
		cfg.Dataset.Attributes = c.StringSlice("attributes")
	}
	if len(cfg.Dataset.Features) == 0 {
		cfg.Dataset.Features = []string{defaultFeature}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src := resolvePath(cwd, c.Args().Get(0))
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var datasets []core.Dataset
	if err := json.Unmarshal(data, &datasets); err != nil {
		return fmt.Errorf("failed to parse dataset %s: %w", src, err)
	}
	fmt.Fprintf(errWriter(c), "Reading %s data!\n", formatBytes(int64(len(data))))

	engine, err := newEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	failed, err := train(ctx, c, engine, cfg, src, datasets)
	if err != nil {
		return err
	}
	stats := engine.Stats()
	fmt.Fprintf(errWriter(c), "Trained %s documents (%s terms, %s skipped)\n",
		humanize.Comma(int64(stats.Documents)), humanize.Comma(int64(stats.Terms)), humanize.Comma(int64(failed)))

	if dir := c.String("store"); dir != "" {
		return saveToBadger(ctx, c, engine, resolvePath(cwd, dir))
	}

	dest := ""
	if c.NArg() > 1 {
		dest = resolvePath(cwd, c.Args().Get(1))
	}
	return saveSnapshot(ctx, c, engine, storage.SnapshotPath(src, dest, snapshotFormat(c)))
}

// train adds datasets in batches, reporting progress, and returns how many
// datasets were rejected. Rejections are logged by the engine; only a
// cancelled context stops training.
func train(ctx context.Context, c *cli.Context, engine *boox.Engine, cfg *config.Config, src string, datasets []core.Dataset) (int, error) {
	batchSize := cfg.Ingestion.BatchSize
	if batchSize < 1 {
		batchSize = ingestion.DefaultBatchSize
	}

	progress := ingestion.NewProgressTracker(errWriter(c), "Training "+src, len(datasets), c.Int("report-interval"))
	progress.Start()
	failed := 0
	for start := 0; start < len(datasets); start += batchSize {
		end := min(start+batchSize, len(datasets))
		if err := engine.AddDocuments(ctx, datasets[start:end]); err != nil {
			if ctx.Err() != nil {
				return failed, err
			}
			failed += countFailures(err)
		}
		progress.Increment(end - start)
	}
	progress.Finish()
	return failed, nil
}

// countFailures counts the per-dataset errors aggregated in err.
func countFailures(err error) int {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}

func saveSnapshot(ctx context.Context, c *cli.Context, engine *boox.Engine, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	store := storage.NewFileStore(path, snapshotFormat(c))
	defer store.Close()

	if err := engine.Save(ctx, store); err != nil {
		return err
	}
	info := store.LastSaved()
	fmt.Fprintf(errWriter(c), "Saved %s state to %s\n", formatBytes(info.StateBytes), path)
	slog.Debug("snapshot written", "path", path, "format", info.Format.String(), "digest", info.Digest)
	return nil
}

func saveToBadger(ctx context.Context, c *cli.Context, engine *boox.Engine, dir string) error {
	backend, err := badger.OpenBackend(dir, false, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewStateRepository(backend)
	defer repo.Close()

	if err := engine.Save(ctx, repo); err != nil {
		return err
	}
	saved := repo.LastSave()
	fmt.Fprintf(errWriter(c), "Saved state to %s (%s records written, %s unchanged, %s deleted)\n", dir,
		humanize.Comma(int64(saved.Written)), humanize.Comma(int64(saved.Skipped)), humanize.Comma(int64(saved.Deleted)))
	return nil
}

package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/config"
	"github.com/poiesic/boox/storage"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// formatBytes renders a size in 1024-based units with up to two decimals,
// e.g. "1.23 MB".
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	i = min(i, len(byteUnits)-1)
	v := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// resolvePath joins relative paths onto cwd.
func resolvePath(cwd, path string) string {
	if cwd == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

func snapshotFormat(c *cli.Context) storage.Format {
	if c.Bool("deflate") {
		return storage.FormatDeflate
	}
	return storage.FormatGzip
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadFrom(c.String("cwd"), c.String("rcname"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("phonetic") {
		cfg.Analysis.Phonetic = c.String("phonetic")
	}
	return cfg, nil
}

// newEngine creates an engine for cfg, reporting to the --metrics collector
// when one is installed.
func newEngine(c *cli.Context, cfg *config.Config) (*boox.Engine, error) {
	opts, err := cfg.EngineOptions(nil)
	if err != nil {
		return nil, err
	}
	if mc := collector(c); mc != nil {
		opts = append(opts, boox.WithSearchMonitor(mc), boox.WithIngestionMonitor(mc))
	}
	engine, err := boox.New(cfg.Dataset.Core(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

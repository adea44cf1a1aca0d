// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/boox/config"
	"github.com/poiesic/boox/metrics"
)

const (
	collectorKey = "collector"
	registryKey  = "registry"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "boox",
		Usage: "Train and search phonetic full-text indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print Prometheus metrics to stderr on exit",
			},
		},
		Before: setup,
		After:  dumpMetrics,
		Commands: []*cli.Command{
			trainCommand(),
			searchCommand(),
		},
	}
}

// commonFlags are shared by every command that reads a configuration file.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cwd",
			Aliases: []string{"c"},
			Usage:   "Working directory",
		},
		&cli.StringFlag{
			Name:    "rcname",
			Aliases: []string{"r"},
			Usage:   "Name of the boox configuration file",
			Value:   config.DefaultFileName,
		},
		&cli.BoolFlag{
			Name:    "deflate",
			Aliases: []string{"d"},
			Usage:   "Use zlib deflate (.dat) instead of gzip (.gz) snapshots",
		},
		&cli.StringFlag{
			Name:    "phonetic",
			Aliases: []string{"p"},
			Usage:   "Phonetic algorithm: none, soundex or doublemetaphone (overrides the configuration file)",
		},
	}
}

func setup(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	if c.Bool("metrics") {
		registry := prometheus.NewRegistry()
		collector, err := metrics.New(registry)
		if err != nil {
			return err
		}
		c.App.Metadata = map[string]any{collectorKey: collector, registryKey: registry}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	level, err := config.LoggingConfig{Level: levelStr}.SlogLevel()
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "text":
		handler = slog.NewTextHandler(errWriter(c), opts)
	case "json":
		handler = slog.NewJSONHandler(errWriter(c), opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.String("log-format"))
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// collector returns the metrics collector installed by --metrics, if any.
func collector(c *cli.Context) *metrics.Collector {
	mc, _ := c.App.Metadata[collectorKey].(*metrics.Collector)
	return mc
}

func dumpMetrics(c *cli.Context) error {
	registry, ok := c.App.Metadata[registryKey].(*prometheus.Registry)
	if !ok {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(errWriter(c), mf); err != nil {
			return err
		}
	}
	return nil
}

func outWriter(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

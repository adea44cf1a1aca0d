package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/ai"
	"github.com/poiesic/boox/ai/openai"
	"github.com/poiesic/boox/storage"
	"github.com/poiesic/boox/storage/badger"
)

// defaultContextLength is the snippet length used when --context names no length.
const defaultContextLength = 160

const separator = "=============================="

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search a trained dataset",
		ArgsUsage: "<source> <query>",
		Action:    searchAction,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Page number to display",
				Value:   1,
			},
			&cli.IntFlag{
				Name:    "length",
				Aliases: []string{"l"},
				Usage:   "Number of results per page",
				Value:   boox.DefaultPerPage,
			},
			&cli.StringFlag{
				Name:    "context",
				Aliases: []string{"k"},
				Usage:   "Display field[::maxLength] context instead of the paginated results object",
			},
			&cli.StringSliceFlag{
				Name:    "attrs",
				Aliases: []string{"a"},
				Usage:   "Fields to display when --context is provided",
			},
			&cli.BoolFlag{
				Name:  "store",
				Usage: "Treat <source> as a BadgerDB directory written by train --store",
			},
			&cli.BoolFlag{
				Name:  "vector",
				Usage: "Rank by cosine similarity of query and document vectors",
			},
			&cli.BoolFlag{
				Name:  "expand",
				Usage: "Expand the query with related terms from a language model",
			},
			&cli.BoolFlag{
				Name:  "semantic",
				Usage: "Boost documents by embedding similarity to the query",
			},
		}, commonFlags()...),
	}
}

func searchAction(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if c.NArg() < 2 {
		return fmt.Errorf("source and query are required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("expand") {
		cfg.AI.ExpandQueries = true
	}
	if c.Bool("semantic") {
		cfg.AI.SemanticMatching = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine, err := newEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	source := resolvePath(c.String("cwd"), c.Args().Get(0))
	store, err := openStore(c, source)
	if err != nil {
		return err
	}
	defer store.Close()

	started := time.Now()
	if err := engine.Load(ctx, store); err != nil {
		return err
	}
	stats := engine.Stats()
	fmt.Fprintf(errWriter(c), "Loading state: %s\n", time.Since(started).Round(time.Millisecond))
	fmt.Fprintf(errWriter(c), "State: %d documents, %d terms\n", stats.Documents, stats.Terms)

	opts := cfg.Search.SearchOptions()
	if c.Bool("vector") {
		opts.UseQueryVector = true
	}
	if cfg.AI.Enabled() {
		provider, err := openai.NewProvider(cfg.AI.Provider())
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		defer provider.Close()
		if cfg.AI.ExpandQueries {
			opts.QueryExpander = provider.QueryExpander().ExpandQuery
		}
		if cfg.AI.SemanticMatching {
			matcher := ai.NewSemanticMatcher(provider.Embedder(), cfg.AI.SemanticFields, cfg.AI.MinSimilarity)
			opts.MatchingCoefficient = matcher.Coefficient
		}
	}

	started = time.Now()
	results, err := engine.Search(ctx, c.Args().Get(1), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(errWriter(c), "Search in: %s\n\n", time.Since(started).Round(time.Microsecond))

	page := boox.Paginate(results, c.Int("offset"), c.Int("length"))
	if spec := c.String("context"); spec != "" {
		return renderContext(outWriter(c), page, spec, c.StringSlice("attrs"))
	}
	return renderJSON(outWriter(c), page)
}

// openStore picks the state store for source. Without --store a missing
// source is looked up as the snapshot train would have written for it.
func openStore(c *cli.Context, source string) (storage.StateStore, error) {
	if c.Bool("store") {
		backend, err := badger.OpenBackend(source, false, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &badgerStore{StateRepository: badger.NewStateRepository(backend), backend: backend}, nil
	}

	format := snapshotFormat(c)
	if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
		if trained := storage.SnapshotPath(source, "", format); trained != source {
			if _, err := os.Stat(trained); err == nil {
				source = trained
			}
		}
	}
	return storage.NewFileStore(source, format), nil
}

// badgerStore closes the backend together with the repository.
type badgerStore struct {
	*badger.StateRepository
	backend *badger.Backend
}

func (s *badgerStore) Close() error {
	return errors.Join(s.StateRepository.Close(), s.backend.Close())
}

// parseContextSpec splits "field[::maxLength]".
func parseContextSpec(spec string) (string, int, error) {
	field, length, found := strings.Cut(spec, "::")
	if !found || length == "" {
		return field, defaultContextLength, nil
	}
	n, err := strconv.Atoi(length)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid context length %q", length)
	}
	return field, n, nil
}

func pageSummary(page boox.Page) string {
	return fmt.Sprintf("Page %d of %d, Showing %d of %d results",
		page.CurrentPage, page.TotalPages, len(page.Results), page.TotalResults)
}

func renderContext(w io.Writer, page boox.Page, spec string, attrs []string) error {
	field, maxLength, err := parseContextSpec(spec)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n\n", pageSummary(page))
	fmt.Fprintf(w, "%s\n\n", separator)
	for _, r := range page.Results {
		snippet := r.Context(field, maxLength)

		meta := make([]string, 0, len(attrs)+1)
		for _, attr := range attrs {
			meta = append(meta, fmt.Sprintf("%s: %v", attr, r.Attributes[attr]))
		}
		meta = append(meta, fmt.Sprintf("%v", snippet.Keywords))

		fmt.Fprintf(w, "%s\n\n", strings.Join(meta, " "))
		fmt.Fprintf(w, "%s...\n\n", snippet.Text)
		fmt.Fprintf(w, "%s\n\n", separator)
	}
	fmt.Fprintf(w, "%s\n", pageSummary(page))
	return nil
}

func renderJSON(w io.Writer, page boox.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(page)
}

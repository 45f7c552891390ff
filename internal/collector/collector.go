// Package collector runs an extraction over a project tree: it selects the
// source files, extracts occurrences from each and folds them, in file
// order, into a single string table.
package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"locale-uploader/internal/filewalker"
	"locale-uploader/internal/parser"
	"locale-uploader/internal/strtable"
	"locale-uploader/internal/worker"
)

// Options configures a Collector.
type Options struct {
	// Root is the directory to scan.
	Root string
	// Extension selects source files, "lua" when empty.
	Extension string
	// Excludes holds the exclusion globs; nil excludes nothing.
	Excludes *filewalker.PatternSet
	// Extractor parses each file.
	Extractor parser.Extractor
	// Workers bounds parallel extraction; values below 1 mean sequential.
	Workers int
}

// Collector extracts and merges localization strings from a project tree.
type Collector struct {
	root      string
	walker    *filewalker.Walker
	extractor parser.Extractor
	workers   int
}

// New creates a Collector reading from fs.
func New(fs afero.Fs, opts Options) *Collector {
	root := opts.Root
	if root == "" {
		root = "."
	}
	return &Collector{
		root:      root,
		walker:    filewalker.NewWalker(fs, opts.Extension, opts.Excludes),
		extractor: opts.Extractor,
		workers:   opts.Workers,
	}
}

// Collect walks the tree and returns the merged table. Any unreadable or
// unparsable file aborts the run; no partial table is returned.
func (c *Collector) Collect(ctx context.Context) (*strtable.Table, error) {
	files, err := c.walker.Walk(c.root)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(c.workers, func(ctx context.Context, rel string) ([]parser.Occurrence, error) {
		return c.extractFile(rel)
	})

	perFile, err := pool.Execute(ctx, files)
	if err != nil {
		return nil, err
	}

	tbl := strtable.New()
	total := 0
	for _, occs := range perFile {
		Merge(tbl, occs)
		total += len(occs)
	}

	log.Info().
		Int("files", len(files)).
		Int("occurrences", total).
		Int("keys", tbl.Len()).
		Int("explicit", tbl.Explicit()).
		Msg("Collected strings")

	return tbl, nil
}

func (c *Collector) extractFile(rel string) ([]parser.Occurrence, error) {
	f, err := c.walker.Open(c.root, rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	occs, err := c.extractor.Extract(rel, f)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", rel).Int("occurrences", len(occs)).Msg("Extracted file")
	return occs, nil
}

// Merge folds occurrences into tbl in order.
func Merge(tbl *strtable.Table, occs []parser.Occurrence) {
	for _, o := range occs {
		if !tbl.Fold(o.Key, o.Value) {
			if _, explicit := o.Value.Text(); explicit {
				log.Debug().
					Str("key", o.Key).
					Str("path", o.Path).
					Int("line", o.Line).
					Msg("Ignored duplicate value")
			}
		}
	}
}

// FindProjectID returns the project ID declared in the first .toc file
// under root, in walk order, that has one.
func FindProjectID(fs afero.Fs, root string) (string, error) {
	w := filewalker.NewWalker(fs, "toc", nil)
	files, err := w.Walk(root)
	if err != nil {
		return "", err
	}

	toc := parser.NewTOCParser()
	for _, rel := range files {
		id, ok, err := readProjectID(w, toc, root, rel)
		if err != nil {
			return "", err
		}
		if ok {
			log.Debug().Str("path", rel).Str("id", id).Msg("Found project ID")
			return id, nil
		}
	}
	return "", nil
}

func readProjectID(w *filewalker.Walker, toc *parser.TOCParser, root, rel string) (string, bool, error) {
	f, err := w.Open(root, rel)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	id, ok, err := toc.ProjectID(f)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", rel, err)
	}
	return id, ok, nil
}

package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultExtension is the source file extension collected by default.
const DefaultExtension = "lua"

// Walker traverses a directory tree and selects files by extension,
// skipping anything matched by its exclusion patterns.
type Walker struct {
	fs       afero.Fs
	ext      string
	excludes *PatternSet
}

// NewWalker creates a Walker over fs. ext may be given with or without the
// leading dot; an empty ext selects DefaultExtension.
func NewWalker(fs afero.Fs, ext string, excludes *PatternSet) *Walker {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	return &Walker{
		fs:       fs,
		ext:      "." + ext,
		excludes: excludes,
	}
}

// Walk returns the selected files under root as slash-separated paths
// relative to root, in lexical order. Hidden files and directories below
// the root are skipped.
func (w *Walker) Walk(root string) ([]string, error) {
	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []string
	excluded := 0

	err = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || !strings.HasSuffix(info.Name(), w.ext) {
			return nil
		}

		rel = filepath.ToSlash(rel)
		if w.excludes.Match(rel) {
			log.Debug().Str("path", rel).Msg("Excluded file")
			excluded++
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("count", len(files)).
		Int("excluded", excluded).
		Str("root", root).
		Str("ext", w.ext).
		Msg("Discovered files")
	return files, nil
}

// Open opens a path previously returned by Walk.
func (w *Walker) Open(root, rel string) (afero.File, error) {
	f, err := w.fs.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	return f, nil
}

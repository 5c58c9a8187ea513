// Package unpack extracts each submission in an export archive into its own directory.
package unpack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/thought-machine/toltool/src/archive"
	logger "github.com/thought-machine/toltool/src/cli/logging"
	"github.com/thought-machine/toltool/src/fs"
	"github.com/thought-machine/toltool/src/metadata"
	"github.com/thought-machine/toltool/src/slug"
)

var log = logger.Log

// An Extractor extracts submissions from a single export archive.
type Extractor struct {
	// Archive is the export archive the submitted files are read from.
	Archive *archive.Archive
	// Root is the directory that per-submission directories are created in.
	Root string
	// Out receives progress messages and warnings.
	Out io.Writer
}

// New creates a new Extractor writing its progress to stdout.
func New(a *archive.Archive, root string) *Extractor {
	if root == "" {
		root = "."
	}
	return &Extractor{
		Archive: a,
		Root:    root,
		Out:     os.Stdout,
	}
}

// Dir returns the directory that the given submission is extracted into.
// Two submitters whose names slugify identically share a directory.
func (e *Extractor) Dir(sub *metadata.Submission) string {
	return filepath.Join(e.Root, slug.FromName(sub.Name))
}

// Extract extracts all the files of a single submission.
func (e *Extractor) Extract(sub *metadata.Submission) error {
	dir := e.Dir(sub)
	if len(sub.Files) == 0 {
		fmt.Fprintf(e.Out, "WARNING: %s (%s) has submitted 0 files\n", sub.Name, sub.QID)
	}
	if created, err := fs.EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", sub.Name, err)
	} else if created {
		log.Info("Created %s", dir)
	}
	for _, f := range sub.Files {
		if err := e.extractFile(f, dir); err != nil {
			return fmt.Errorf("failed to extract %s for %s (%s): %w", f.ArchiveName, sub.Name, sub.QID, err)
		}
	}
	if files, size, err := fs.Usage(dir); err == nil {
		log.Debug("%s now contains %d files (%s)", dir, files, humanize.Bytes(size))
	}
	return nil
}

func (e *Extractor) extractFile(f metadata.SubmittedFile, dir string) error {
	if strings.HasSuffix(f.OriginalName, ".zip") {
		return e.unpackNested(f.ArchiveName, dir)
	}
	if !filepath.IsLocal(f.OriginalName) {
		return fmt.Errorf("refusing to rename %s to %s outside of %s", f.ArchiveName, f.OriginalName, dir)
	}
	target := filepath.Join(dir, f.OriginalName)
	fmt.Fprintf(e.Out, "Extracting %s to %s\n", f.ArchiveName, target)
	if _, err := e.Archive.ExtractFile(f.ArchiveName, dir); err != nil {
		return err
	}
	return fs.RenameFile(dir, f.ArchiveName, f.OriginalName)
}

// unpackNested extracts the contents of a zip file that was itself submitted.
func (e *Extractor) unpackNested(name, dir string) error {
	fmt.Fprintf(e.Out, "Extracting %s to %s\n", name, dir)
	nested, err := e.Archive.Nested(name)
	if err != nil {
		return err
	}
	defer nested.Close()
	return nested.ExtractAll(dir)
}

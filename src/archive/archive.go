// Package archive implements the zip handling for toltool.
// It reads the export archive and extracts entries from it, or from
// zip files nested inside it, onto disk.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"

	"github.com/thought-machine/toltool/src/cli"
	logger "github.com/thought-machine/toltool/src/cli/logging"
	"github.com/thought-machine/toltool/src/fs"
)

var log = logger.Log

// maxSuggestionDistance is how different an entry name can be to be suggested in place of a missing one.
const maxSuggestionDistance = 6

// An Archive is an open zip file.
type Archive struct {
	// Prompt, if set, is called to ask for a password the first time an encrypted entry is
	// read and no password was given.
	Prompt func(entry string) (string, error)

	r        *zip.Reader
	closer   io.Closer
	files    map[string]*zip.File
	password string
}

// Open opens the zip file at the given path.
// The password, if not empty, is used for any encrypted entries.
func Open(path, password string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return newArchive(&rc.Reader, rc, password), nil
}

// FromBytes opens an in-memory zip file.
func FromBytes(b []byte, password string) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	return newArchive(r, nil, password), nil
}

// Nested opens the named entry, which must itself be a zip file, as an Archive.
// It shares this archive's password and prompt.
func (a *Archive) Nested(name string) (*Archive, error) {
	b, err := a.ReadFile(name)
	if err != nil {
		return nil, err
	}
	nested, err := FromBytes(b, a.password)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid zip file: %w", name, err)
	}
	nested.Prompt = a.Prompt
	return nested, nil
}

func newArchive(r *zip.Reader, closer io.Closer, password string) *Archive {
	a := &Archive{
		r:        r,
		closer:   closer,
		files:    make(map[string]*zip.File, len(r.File)),
		password: password,
	}
	for _, f := range r.File {
		// On duplicate names the last one wins, which is what readers that look up by name generally do.
		a.files[f.Name] = f
	}
	return a
}

// Close closes the underlying file, if there is one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Names returns the names of all entries in the archive, in order.
func (a *Archive) Names() []string {
	ret := make([]string, len(a.r.File))
	for i, f := range a.r.File {
		ret[i] = f.Name
	}
	return ret
}

// Size returns the uncompressed size of the named entry, or zero if it doesn't exist.
func (a *Archive) Size(name string) uint64 {
	if f, present := a.files[name]; present {
		return f.UncompressedSize64
	}
	return 0
}

// ReadFile returns the contents of the named entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	r, err := a.open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return b, nil
}

// ExtractFile extracts the named entry into the given directory, under its own name,
// and returns the path it was written to.
func (a *Archive) ExtractFile(name, dir string) (string, error) {
	f, present := a.files[name]
	if !present {
		return "", a.notFound(name)
	}
	out, err := outputPath(dir, name)
	if err != nil {
		return "", err
	}
	return out, a.extractFile(f, out)
}

// ExtractAll extracts every entry in the archive into the given directory.
// Directory entries are created as directories. Entry names are sanitised the way
// unzip tools usually do: leading slashes and any "." or ".." components are dropped.
func (a *Archive) ExtractAll(dir string) error {
	for _, f := range a.r.File {
		name := sanitise(f.Name)
		if name == "" {
			log.Warning("Skipping entry %s which has no usable name", f.Name)
			continue
		} else if name != strings.TrimSuffix(f.Name, "/") {
			log.Warning("Extracting %s as %s", f.Name, name)
		}
		out, err := outputPath(dir, name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(out, fs.DirPermissions); err != nil {
				return err
			}
			continue
		}
		if err := a.extractFile(f, out); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) open(name string) (io.ReadCloser, error) {
	f, present := a.files[name]
	if !present {
		return nil, a.notFound(name)
	}
	return a.openFile(f)
}

func (a *Archive) notFound(name string) error {
	return fmt.Errorf("no entry %s in archive%s: %w", name, cli.PrettyPrintSuggestion(name, a.Names(), maxSuggestionDistance), os.ErrNotExist)
}

func (a *Archive) openFile(f *zip.File) (io.ReadCloser, error) {
	if f.IsEncrypted() {
		if a.password == "" && a.Prompt != nil {
			password, err := a.Prompt(f.Name)
			if err != nil {
				return nil, err
			}
			a.password = password
		}
		if a.password == "" {
			return nil, fmt.Errorf("%s is encrypted but no password was given", f.Name)
		}
		f.SetPassword(a.password)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	return r, nil
}

func (a *Archive) extractFile(f *zip.File, out string) error {
	log.Debug("Extracting %s to %s", f.Name, out)
	r, err := a.openFile(f)
	if err != nil {
		return err
	}
	defer r.Close()
	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	if err := fs.WriteFile(r, out, mode); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}

// outputPath returns the path that an entry should be extracted to within dir.
// It refuses names that would end up outside dir.
func outputPath(dir, name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("refusing to extract %s outside of %s", name, dir)
	}
	return filepath.Join(dir, local), nil
}

// sanitise returns name with any empty, "." or ".." components removed, e.g.
// "../notes.txt" -> "notes.txt" and "/abs/a.txt" -> "abs/a.txt".
func sanitise(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == filepath.Separator })
	keep := parts[:0]
	for _, part := range parts {
		if part != "." && part != ".." {
			keep = append(keep, part)
		}
	}
	return strings.Join(keep, "/")
}

// Package metadata finds and parses the per-submission metadata files
// that an LMS export places alongside the submitted files.
//
// A metadata file looks roughly like this (Dutch exports use Naam,
// Bestandsnaam and Oorspronkelijke bestandsnaam instead):
//
//	Name: Jane Doe (q1234567)
//	...
//	Files:
//	    Original filename: essay.docx
//	    Filename: essay_abc123.docx
package metadata

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/peterebden/go-deferred-regex"

	logger "github.com/thought-machine/toltool/src/cli/logging"
)

var log = logger.Log

// DefaultOriginalName is the original name recorded for a file listed before any
// original filename has been seen.
const DefaultOriginalName = "dummy"

// ErrNoName is returned (wrapped in a ParseError) when a metadata file has no name/ID line.
var ErrNoName = errors.New("failed to extract name")

var metadataFileRex = deferredregex.DeferredRegex{Re: `^.*_q\d{7}_(?:poging|attempt)_\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\.txt$`}
var nameRex = deferredregex.DeferredRegex{Re: `(?:Name|Naam): (.*) \((q\d+)\)`}

// indent matches leading Unicode whitespace; \s alone only covers ASCII.
const indent = `^[\s\x0b\x1c-\x1f\x85\p{Z}]+`

var originalNameRex = deferredregex.DeferredRegex{Re: indent + `(?:Oorspronkelijke bestandsnaam|Original filename): (.*)$`}
var filenameRex = deferredregex.DeferredRegex{Re: indent + `(?:Bestandsnaam|Filename): (.*)$`}

// A Submission is one student's identity plus the files they handed in.
type Submission struct {
	// Entry is the name of the metadata entry this was parsed from.
	Entry string
	Name  string
	QID   string
	Files []SubmittedFile
}

// A SubmittedFile maps an entry in the export archive to the name the student gave it.
type SubmittedFile struct {
	ArchiveName  string
	OriginalName string
}

// OriginalNames returns the original names of all submitted files, in order.
func (s *Submission) OriginalNames() []string {
	ret := make([]string, len(s.Files))
	for i, f := range s.Files {
		ret[i] = f.OriginalName
	}
	return ret
}

// A ParseError is returned when a metadata entry can't be understood.
type ParseError struct {
	Entry string
	Err   error
}

func (err *ParseError) Error() string {
	if err.Entry == "" {
		return err.Err.Error()
	}
	return fmt.Sprintf("%s: %s", err.Entry, err.Err)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

// IsMetadataFile returns true if the given archive entry name is a submission metadata file.
func IsMetadataFile(name string) bool {
	return metadataFileRex.FindStringSubmatch(name) != nil
}

// Locate returns the metadata files among the given entry names, preserving their order.
func Locate(names []string) []string {
	var ret []string
	for _, name := range names {
		if IsMetadataFile(name) {
			ret = append(ret, name)
		}
	}
	return ret
}

// An Archive is the part of an export archive that metadata needs to read.
type Archive interface {
	Names() []string
	ReadFile(name string) ([]byte, error)
}

// Walk parses each metadata file in the archive, in archive order, and calls fn with each submission.
// Entries that fail to parse are logged and skipped; they are returned together as skipped
// (nil if there were none). An error reading the archive, or one returned by fn, stops the walk.
func Walk(a Archive, fn func(*Submission) error) (skipped, err error) {
	var parseErrors *multierror.Error
	for _, name := range Locate(a.Names()) {
		b, err := a.ReadFile(name)
		if err != nil {
			return parseErrors.ErrorOrNil(), err
		} else if !utf8.Valid(b) {
			return parseErrors.ErrorOrNil(), fmt.Errorf("%s is not valid UTF-8", name)
		}
		sub, err := Parse(string(b))
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Entry = name
			log.Warning("Failed to parse metadata in %s, skipping", name)
			parseErrors = multierror.Append(parseErrors, perr)
			continue
		} else if err != nil {
			return parseErrors.ErrorOrNil(), err
		}
		sub.Entry = name
		log.Debug("Parsed %s: %s (%s), %d files", name, sub.Name, sub.QID, len(sub.Files))
		if err := fn(sub); err != nil {
			return parseErrors.ErrorOrNil(), err
		}
	}
	return parseErrors.ErrorOrNil(), nil
}

// Parse parses the contents of a single metadata file.
func Parse(text string) (*Submission, error) {
	match := nameRex.FindStringSubmatch(text)
	if match == nil {
		return nil, &ParseError{Err: ErrNoName}
	}
	return &Submission{
		Name:  match[1],
		QID:   match[2],
		Files: findSubmittedFiles(text),
	}, nil
}

// fileState is the accumulator threaded through the lines of a metadata file.
type fileState struct {
	original string
	files    []SubmittedFile
	index    map[string]int
}

func findSubmittedFiles(text string) []SubmittedFile {
	state := fileState{original: DefaultOriginalName, index: map[string]int{}}
	for _, line := range splitLines(text) {
		state = foldLine(state, line)
	}
	return state.files
}

// foldLine applies a single line to the state.
// A repeated filename keeps its original position but takes the newer original name.
func foldLine(state fileState, line string) fileState {
	if match := originalNameRex.FindStringSubmatch(line); match != nil {
		state.original = match[1]
	}
	if match := filenameRex.FindStringSubmatch(line); match != nil {
		if i, present := state.index[match[1]]; present {
			state.files[i].OriginalName = state.original
		} else {
			state.index[match[1]] = len(state.files)
			state.files = append(state.files, SubmittedFile{ArchiveName: match[1], OriginalName: state.original})
		}
	}
	return state
}

// splitLines splits text into lines at \n, \r\n, \r and the other Unicode line boundaries
// (\v, \f, \x1c-\x1e, \x85, U+2028 and U+2029). A trailing line break doesn't produce
// an extra empty line.
func splitLines(text string) []string {
	var lines []string
	for text != "" {
		i := strings.IndexFunc(text, isLineBreak)
		if i == -1 {
			return append(lines, text)
		}
		lines = append(lines, text[:i])
		_, size := utf8.DecodeRuneInString(text[i:])
		if strings.HasPrefix(text[i:], "\r\n") {
			size = 2
		}
		text = text[i+size:]
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

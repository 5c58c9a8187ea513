// Package cli contains helper functions related to flag parsing and logging.
package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/go-semver/semver"
	cli "github.com/peterebden/go-cli-init/v5/flags"
	"github.com/thought-machine/go-flags"
)

// ParseFlagsOrDie parses the app's flags and dies if unsuccessful.
// Also dies if any unexpected arguments are passed.
// It returns the active command if there is one.
func ParseFlagsOrDie(appname string, data interface{}) string {
	return cli.ParseFlagsOrDie(appname, data, nil)
}

// A Version is an extension to semver.Version extending it with the ability to
// recognise >= prefixes.
type Version struct {
	semver.Version
	IsGTE bool
	IsSet bool
}

// MustNewVersion creates a new version and dies if it is not parseable.
func MustNewVersion(in string) *Version {
	v := &Version{}
	if err := v.UnmarshalFlag(in); err != nil {
		log.Fatalf("Failed to parse version: %s", in)
	}
	return v
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (v *Version) UnmarshalFlag(in string) error {
	if strings.HasPrefix(in, ">=") {
		v.IsGTE = true
		in = strings.TrimSpace(strings.TrimPrefix(in, ">="))
	}
	v.IsSet = true
	return flagsError(v.Set(in))
}

// String implements the fmt.Stringer interface
func (v Version) String() string {
	if v.IsGTE {
		return ">=" + v.Version.String()
	}
	return v.Version.String()
}

// flagsError converts an error to a flags.Error, which is required for flag parsing.
func flagsError(err error) error {
	if err == nil {
		return nil
	}
	return &flags.Error{Type: flags.ErrMarshal, Message: err.Error()}
}

// A Filepath implements completion for file paths.
// This is distinct from upstream's in that it knows about completing into directories.
type Filepath string

// Complete implements the flags.Completer interface.
func (f *Filepath) Complete(match string) []flags.Completion {
	matches, _ := filepath.Glob(match + "*")
	// If there's exactly one match and it's a directory, take its contents instead.
	if len(matches) == 1 {
		if info, err := os.Stat(matches[0]); err == nil && info.IsDir() {
			matches, _ = filepath.Glob(matches[0] + "/*")
		}
	}
	ret := make([]flags.Completion, len(matches))
	for i, match := range matches {
		ret[i].Item = match
	}
	return ret
}

// A Zipfile is a Filepath that only completes to .zip files and directories.
type Zipfile string

// Complete implements the flags.Completer interface.
func (z *Zipfile) Complete(match string) []flags.Completion {
	f := Filepath(*z)
	var ret []flags.Completion
	for _, c := range f.Complete(match) {
		if strings.HasSuffix(c.Item, ".zip") {
			ret = append(ret, c)
		} else if info, err := os.Stat(c.Item); err == nil && info.IsDir() {
			ret = append(ret, c)
		}
	}
	return ret
}

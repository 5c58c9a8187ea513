// Package main implements toltool, which unpacks the submissions in an assignment
// export downloaded from the LMS into one directory per student.
package main

import (
	"fmt"
	"os"

	"github.com/thought-machine/toltool/src/archive"
	"github.com/thought-machine/toltool/src/cli"
	logger "github.com/thought-machine/toltool/src/cli/logging"
	"github.com/thought-machine/toltool/src/config"
	"github.com/thought-machine/toltool/src/fs"
	"github.com/thought-machine/toltool/src/metadata"
	"github.com/thought-machine/toltool/src/unpack"
	"github.com/thought-machine/toltool/src/view"
)

var log = logger.Log

// version is overridden at link time for releases.
var version = "1.2.0"

var opts = struct {
	Usage string

	Verbosity cli.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (higher number = more output)"`
	Config    string        `long:"config" description:"Additional config file to read, overriding the default ones"`
	Version   bool          `long:"version" description:"Print the version and exit"`

	View struct {
		Sizes    bool   `long:"sizes" description:"Show the total size of each student's submitted files"`
		Password string `long:"password" env:"TOLTOOL_PASSWORD" description:"Password for encrypted entries"`
		Args     struct {
			Archive cli.Zipfile `positional-arg-name:"archive" description:"The exported zip file"`
		} `positional-args:"true" required:"true"`
	} `command:"view" description:"Print a table of the submissions in an export"`

	Unpack struct {
		OutputDir string `short:"o" long:"output_dir" description:"Directory to create the per-student directories in"`
		Password  string `long:"password" env:"TOLTOOL_PASSWORD" description:"Password for encrypted entries"`
		Strict    bool   `long:"strict" description:"Exit unsuccessfully if any metadata file couldn't be parsed"`
		Args      struct {
			Archive cli.Zipfile `positional-arg-name:"archive" description:"The exported zip file"`
		} `positional-args:"true" required:"true"`
	} `command:"unpack" alias:"u" description:"Extract each student's submitted files into their own directory"`
}{
	Usage: `
toltool unpacks assignment exports downloaded from the LMS.

An export is a zip file with, for every attempt, a metadata .txt file naming the student and
listing the files they handed in, next to the files themselves under mangled names.
'toltool unpack' puts each student's files in a directory named after them (e.g. doe-jane)
with their original names restored, unpacking any zip files they handed in.
'toltool view' just lists what's in the export.
`,
}

var subCommands = map[string]func(*config.Configuration) int{
	"view": func(c *config.Configuration) int {
		a := mustOpen(string(opts.View.Args.Archive), firstNonEmpty(opts.View.Password, c.Unpack.Password))
		defer a.Close()
		var sizer view.Sizer
		if opts.View.Sizes || c.View.Sizes {
			sizer = a
		}
		table := view.NewTable(sizer)
		skipped, err := metadata.Walk(a, table.Add)
		if err != nil {
			log.Errorf("%s", err)
			return 1
		}
		if table.Len() == 0 {
			log.Warning("No submissions found in %s", opts.View.Args.Archive)
		}
		if err := table.Write(os.Stdout); err != nil {
			log.Errorf("%s", err)
			return 1
		}
		return exitCode(skipped, false)
	},
	"unpack": func(c *config.Configuration) int {
		password := firstNonEmpty(opts.Unpack.Password, c.Unpack.Password)
		a := mustOpen(string(opts.Unpack.Args.Archive), password)
		defer a.Close()
		e := unpack.New(a, fs.ExpandHomePath(firstNonEmpty(opts.Unpack.OutputDir, c.Unpack.OutputDir)))
		skipped, err := metadata.Walk(a, e.Extract)
		if err != nil {
			log.Errorf("%s", err)
			return 1
		}
		return exitCode(skipped, opts.Unpack.Strict || c.Unpack.Strict)
	},
}

func mustOpen(path, password string) *archive.Archive {
	a, err := archive.Open(fs.ExpandHomePath(path), password)
	if err != nil {
		log.Fatalf("%s", err)
	}
	if cli.StdInIsATerminal {
		a.Prompt = func(entry string) (string, error) {
			return cli.PromptPassword(fmt.Sprintf("Password for %s", entry))
		}
	}
	return a
}

// exitCode returns the exit code for a run that skipped the given metadata files.
func exitCode(skipped error, strict bool) int {
	if skipped != nil && strict {
		log.Errorf("%s", skipped)
		return 1
	}
	return 0
}

func firstNonEmpty(s ...string) string {
	for _, x := range s {
		if x != "" {
			return x
		}
	}
	return ""
}

func printVersion() {
	fmt.Printf("toltool version %s\n", cli.MustNewVersion(version))
	os.Exit(0)
}

func main() {
	// Handled before parsing since otherwise go-flags insists on a command.
	if len(os.Args) == 2 && os.Args[1] == "--version" {
		printVersion()
	}
	command := cli.ParseFlagsOrDie("toltool", &opts)
	if opts.Version {
		printVersion()
	}
	cli.InitLogging(opts.Verbosity)

	files := config.DefaultConfigFiles()
	if opts.Config != "" {
		files = append(files, fs.ExpandHomePath(opts.Config))
	}
	c, err := config.ReadConfigFiles(files)
	if err != nil {
		log.Fatalf("Error reading config: %s", err)
	}
	os.Exit(subCommands[command](c))
}

// Package config reads toltool's optional config files.
//
// They use a git-config-like format, for example:
//
//	[unpack]
//	outputdir = submissions
//	strict = true
package config

import (
	"os"
	"path/filepath"

	"github.com/please-build/gcfg"

	logger "github.com/thought-machine/toltool/src/cli/logging"
)

var log = logger.Log

// ConfigFileName is the name of the config file in the working directory.
const ConfigFileName = ".toltoolconfig"

// MachineConfigFileName is the machine-wide config file.
const MachineConfigFileName = "/etc/toltoolconfig"

// A Configuration holds defaults for the command-line flags.
type Configuration struct {
	Unpack struct {
		OutputDir string `help:"Directory to create the per-student directories in."`
		Password  string `help:"Password for encrypted entries in the export or in submitted zip files."`
		Strict    bool   `help:"Exit unsuccessfully if any metadata file couldn't be parsed."`
	}
	View struct {
		Sizes bool `help:"Show the total size of each submission."`
	}
}

// DefaultConfiguration returns the configuration used when no files set anything.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Unpack.OutputDir = "."
	return config
}

// DefaultConfigFiles returns the config files that are read by default, in increasing order of precedence.
func DefaultConfigFiles() []string {
	files := []string{MachineConfigFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "toltool", "toltoolconfig"))
	}
	return append(files, ConfigFileName)
}

func readConfigFile(config *Configuration, filename string) error {
	if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
		return nil // It's not an error to not have the file at all.
	} else if err != nil {
		return err
	}
	log.Debug("Read config from %s", filename)
	return nil
}

// ReadConfigFiles reads config from the given locations, in order.
// Values are filled in by defaults initially and then overridden by each file in turn.
func ReadConfigFiles(filenames []string) (*Configuration, error) {
	config := DefaultConfiguration()
	for _, filename := range filenames {
		if err := readConfigFile(config, filename); err != nil {
			return config, err
		}
	}
	return config, nil
}

package cli

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/markers"
)

// Config is the optional TOML config file. Flags given on the command line
// take precedence over it.
//
//	[tree]
//	depth = 3
//	prune = ["pip", "setuptools"]
//	no_extras = true
//
//	[environment]
//	python_version = "3.11"
//	sys_platform = "linux"
type Config struct {
	Tree        TreeConfig          `toml:"tree"`
	Environment markers.Environment `toml:"environment"`
}

// TreeConfig holds defaults for the tree command's flags.
type TreeConfig struct {
	Depth       *int     `toml:"depth"`
	Prune       []string `toml:"prune"`
	NoDedupe    bool     `toml:"no_dedupe"`
	Invert      bool     `toml:"invert"`
	NoExtras    bool     `toml:"no_extras"`
	ShowOrphans bool     `toml:"show_orphans"`
	Strict      bool     `toml:"strict"`
}

// loadConfig reads the config file at path. An empty path means the default
// location, where a missing file is not an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %s", path, undecoded[0])
	}
	return &cfg, nil
}

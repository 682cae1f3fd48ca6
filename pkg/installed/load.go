package installed

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// Load reads an inventory from path, choosing the loader by what path is: a
// directory is a site-packages directory (or a virtual environment containing
// one), *.lock is a poetry lock file, and *.json or *.yaml an inventory document.
func Load(path string, logger func(string, ...any)) ([]*Dist, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "inventory %s", path)
	}

	if fi.IsDir() {
		if _, err := os.Stat(filepath.Join(path, "pyvenv.cfg")); err == nil {
			sp, err := FindSitePackages(path)
			if err != nil {
				return nil, err
			}
			path = sp
		}
		return LoadSitePackages(path, logger)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".lock":
		return LoadPoetryLock(path)
	case ".json":
		return loadFile(path, LoadJSON)
	case ".yaml", ".yml":
		return loadFile(path, LoadYAML)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported inventory %q (want a directory, .lock, .json or .yaml)", filepath.Base(path))
	}
}

func loadFile(path string, load func(io.Reader) ([]*Dist, error)) ([]*Dist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "opening %s", path)
	}
	defer f.Close()
	return load(f)
}

package installed

import (
	"bufio"
	stderrors "errors"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

const distInfoSuffix = ".dist-info"

// LoadSitePackages reads every *.dist-info directory in dir, in directory
// listing order. A dist-info whose METADATA is missing or unreadable is
// returned with Err set and the name and version taken from the directory
// name.
func LoadSitePackages(dir string, logger func(string, ...any)) ([]*Dist, error) {
	if logger == nil {
		logger = func(string, ...any) {}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "site-packages %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading site-packages %s", dir)
	}

	var infos []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), distInfoSuffix) {
			infos = append(infos, entry.Name())
		}
	}

	// METADATA files are read concurrently; results keep listing order.
	dists := make([]*Dist, len(infos))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, name := range infos {
		g.Go(func() error {
			dists[i] = readDistInfo(filepath.Join(dir, name))
			return nil
		})
	}
	_ = g.Wait()

	for i, d := range dists {
		if d.Err != nil {
			logger("metadata unreadable: %s: %v", infos[i], d.Err)
		}
	}
	logger("loaded %d distributions from %s", len(dists), dir)
	return dists, nil
}

// readDistInfo parses <dir>/METADATA, a RFC 822 style header block.
func readDistInfo(dir string) *Dist {
	name, version := splitDistInfoName(filepath.Base(dir))
	d := &Dist{Name: name, Version: version, Location: dir}

	f, err := os.Open(filepath.Join(dir, "METADATA"))
	if err != nil {
		d.Err = errors.Wrap(errors.ErrCodeMissingMetadata, err, "reading METADATA for %s", name)
		return d
	}
	defer f.Close()

	header, err := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
	if err != nil && !(stderrors.Is(err, io.EOF) && len(header) > 0) {
		d.Err = errors.Wrap(errors.ErrCodeMissingMetadata, err, "parsing METADATA for %s", name)
		return d
	}

	if v := header.Get("Name"); v != "" {
		d.Name = v
	}
	if v := header.Get("Version"); v != "" {
		d.Version = v
	}
	d.Extras = header.Values("Provides-Extra")

	for _, line := range header.Values("Requires-Dist") {
		req, err := ParseRequirement(line)
		if err != nil {
			d.Err = errors.Wrap(errors.ErrCodeMissingMetadata, err, "reading requirements of %s", d.Name)
			d.Requires = nil
			return d
		}
		d.Requires = append(d.Requires, req)
	}
	return d
}

// splitDistInfoName splits "name-version.dist-info". Dist-info directory
// names escape "-" in the project name as "_", so the first dash separates
// name and version.
func splitDistInfoName(base string) (string, string) {
	base = strings.TrimSuffix(base, distInfoSuffix)
	name, version, _ := strings.Cut(base, "-")
	return name, version
}

// FindSitePackages returns the site-packages directory of a virtual
// environment rooted at venv, trying the POSIX layout first.
func FindSitePackages(venv string) (string, error) {
	matches, _ := filepath.Glob(filepath.Join(venv, "lib", "python3*", "site-packages"))
	matches = append(matches, filepath.Join(venv, "Lib", "site-packages"))
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.IsDir() {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeFileNotFound, "no site-packages directory under %s", venv)
}

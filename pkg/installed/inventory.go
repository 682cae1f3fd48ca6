package installed

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// inventory is the document shape accepted by LoadJSON and LoadYAML:
//
//	{"packages": [
//	  {"name": "requests", "version": "2.31.0",
//	   "requires": ["idna<4,>=2.5", "PySocks!=1.5.7,>=1.5.6; extra == \"socks\""],
//	   "extras": ["socks"]}
//	]}
//
// A non-empty "error" marks a package whose requirements could not be read.
type inventory struct {
	Packages []inventoryPackage `json:"packages" yaml:"packages"`
}

type inventoryPackage struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version" yaml:"version"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	Extras   []string `json:"extras,omitempty" yaml:"extras,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// LoadJSON reads a JSON package inventory. Packages are returned in document
// order.
func LoadJSON(r io.Reader) ([]*Dist, error) {
	var inv inventory
	if err := json.NewDecoder(r).Decode(&inv); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding package inventory")
	}
	return inv.dists()
}

// LoadYAML reads the same inventory written as YAML:
//
//	packages:
//	  - name: requests
//	    version: 2.31.0
//	    requires: ["idna<4,>=2.5"]
func LoadYAML(r io.Reader) ([]*Dist, error) {
	var inv inventory
	if err := yaml.NewDecoder(r).Decode(&inv); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding package inventory")
	}
	return inv.dists()
}

func (inv inventory) dists() ([]*Dist, error) {
	dists := make([]*Dist, 0, len(inv.Packages))
	for i, p := range inv.Packages {
		if p.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "package #%d has no name", i)
		}
		d := &Dist{Name: p.Name, Version: p.Version, Extras: p.Extras}
		if p.Error != "" {
			d.Err = errors.New(errors.ErrCodeMissingMetadata, "%s: %s", p.Name, p.Error)
			dists = append(dists, d)
			continue
		}
		for _, s := range p.Requires {
			req, err := ParseRequirement(s)
			if err != nil {
				d.Err = errors.Wrap(errors.ErrCodeMissingMetadata, err, "requirements of %s", p.Name)
				d.Requires = nil
				break
			}
			d.Requires = append(d.Requires, req)
		}
		dists = append(dists, d)
	}
	return dists, nil
}

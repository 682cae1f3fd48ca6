package installed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const requestsMetadata = `Metadata-Version: 2.1
Name: requests
Version: 2.31.0
Summary: Python HTTP for Humans.
Requires-Python: >=3.7
Requires-Dist: charset-normalizer <4,>=2
Requires-Dist: idna <4,>=2.5
Requires-Dist: urllib3 <3,>=1.21.1
Requires-Dist: certifi >=2017.4.17
Requires-Dist: PySocks !=1.5.7,>=1.5.6 ; extra == 'socks'
Provides-Extra: security
Provides-Extra: socks

Requests is an HTTP library.
`

func names(dists []*Dist) []string {
	var out []string
	for _, d := range dists {
		out = append(out, d.Name)
	}
	return out
}

func TestLoadSitePackages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "requests-2.31.0.dist-info", "METADATA"), requestsMetadata)
	writeFile(t, filepath.Join(dir, "idna-3.6.dist-info", "METADATA"), "Metadata-Version: 2.1\nName: idna\nVersion: 3.6\n")
	if err := os.MkdirAll(filepath.Join(dir, "broken_pkg-1.0.dist-info"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "requests", "__init__.py"), "")
	writeFile(t, filepath.Join(dir, "README.txt"), "not a dist")

	var logged []string
	dists, err := LoadSitePackages(dir, func(format string, args ...any) {
		logged = append(logged, format)
	})
	if err != nil {
		t.Fatalf("LoadSitePackages: %v", err)
	}

	if diff := cmp.Diff([]string{"broken_pkg", "idna", "requests"}, names(dists)); diff != "" {
		t.Errorf("dists mismatch (-want +got):\n%s", diff)
	}

	broken := dists[0]
	if broken.Version != "1.0" {
		t.Errorf("broken.Version = %q, want %q", broken.Version, "1.0")
	}
	if !errors.Is(broken.Err, errors.ErrCodeMissingMetadata) {
		t.Errorf("broken.Err = %v, want MISSING_METADATA", broken.Err)
	}

	req := dists[2]
	if req.Err != nil {
		t.Fatalf("requests.Err = %v", req.Err)
	}
	if req.Version != "2.31.0" {
		t.Errorf("Version = %q, want 2.31.0", req.Version)
	}
	if diff := cmp.Diff([]string{"security", "socks"}, req.Extras); diff != "" {
		t.Errorf("Extras mismatch (-want +got):\n%s", diff)
	}
	var targets []string
	for _, r := range req.Requires {
		targets = append(targets, r.Name)
	}
	if diff := cmp.Diff([]string{"charset-normalizer", "idna", "urllib3", "certifi", "PySocks"}, targets); diff != "" {
		t.Errorf("Requires mismatch (-want +got):\n%s", diff)
	}
	if got := req.Requires[4].Marker; got != "extra == 'socks'" {
		t.Errorf("PySocks marker = %q", got)
	}
	if len(logged) == 0 {
		t.Error("expected progress to be logged")
	}
}

func TestLoadSitePackagesMissingDir(t *testing.T) {
	_, err := LoadSitePackages(filepath.Join(t.TempDir(), "nope"), nil)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadDistInfoBadRequirement(t *testing.T) {
	dir := t.TempDir()
	info := filepath.Join(dir, "weird-0.1.dist-info")
	writeFile(t, filepath.Join(info, "METADATA"), "Name: weird\nVersion: 0.1\nRequires-Dist: !!!\n\n")

	d := readDistInfo(info)
	if !errors.Is(d.Err, errors.ErrCodeMissingMetadata) {
		t.Errorf("Err = %v, want MISSING_METADATA", d.Err)
	}
	if d.Requires != nil {
		t.Errorf("Requires = %v, want nil", d.Requires)
	}
}

func TestFindSitePackages(t *testing.T) {
	venv := t.TempDir()
	sp := filepath.Join(venv, "lib", "python3.12", "site-packages")
	if err := os.MkdirAll(sp, 0755); err != nil {
		t.Fatal(err)
	}
	got, err := FindSitePackages(venv)
	if err != nil {
		t.Fatalf("FindSitePackages: %v", err)
	}
	if got != sp {
		t.Errorf("FindSitePackages = %q, want %q", got, sp)
	}

	if _, err := FindSitePackages(t.TempDir()); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

const poetryLock = `
[[package]]
name = "requests"
version = "2.31.0"
description = "Python HTTP for Humans."
optional = false
python-versions = ">=3.7"

[package.dependencies]
certifi = ">=2017.4.17"
idna = ">=2.5,<4"
PySocks = {version = ">=1.5.6, !=1.5.7", optional = true}
urllib3 = [
    {version = ">=1.21.1,<2", markers = "python_version < \"3.10\""},
    {version = ">=1.21.1,<3", markers = "python_version >= \"3.10\""},
]
chardet = {version = ">=3.0.2,<6", optional = true}
unused = {version = "*", optional = true}

[package.extras]
socks = ["PySocks (>=1.5.6,!=1.5.7)"]
use-chardet-on-py3 = ["chardet (>=3.0.2,<6)"]

[[package]]
name = "idna"
version = "3.6"
optional = false
python-versions = ">=3.5"
`

func TestLoadPoetryLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poetry.lock")
	writeFile(t, path, poetryLock)

	dists, err := LoadPoetryLock(path)
	if err != nil {
		t.Fatalf("LoadPoetryLock: %v", err)
	}
	if diff := cmp.Diff([]string{"requests", "idna"}, names(dists)); diff != "" {
		t.Fatalf("dists mismatch (-want +got):\n%s", diff)
	}

	req := dists[0]
	if diff := cmp.Diff([]string{"socks", "use-chardet-on-py3"}, req.Extras); diff != "" {
		t.Errorf("Extras mismatch (-want +got):\n%s", diff)
	}

	want := []Requirement{
		{Name: "PySocks", Specifier: ">=1.5.6,!=1.5.7", Marker: `extra == "socks"`},
		{Name: "certifi", Specifier: ">=2017.4.17"},
		{Name: "chardet", Specifier: ">=3.0.2,<6", Marker: `extra == "use-chardet-on-py3"`},
		{Name: "idna", Specifier: ">=2.5,<4"},
		{Name: "urllib3", Specifier: ">=1.21.1,<2", Marker: `python_version < "3.10"`},
		{Name: "urllib3", Specifier: ">=1.21.1,<3", Marker: `python_version >= "3.10"`},
	}
	if diff := cmp.Diff(want, req.Requires); diff != "" {
		t.Errorf("Requires mismatch (-want +got):\n%s", diff)
	}
	if dists[1].Requires != nil {
		t.Errorf("idna.Requires = %v, want none", dists[1].Requires)
	}
}

func TestLoadPoetryLockInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poetry.lock")
	writeFile(t, path, "[[package]\nname=")
	if _, err := LoadPoetryLock(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestLoadJSON(t *testing.T) {
	doc := `{"packages": [
		{"name": "flask", "version": "3.0.0", "requires": ["Werkzeug>=3.0.0", "click>=8.1.3", "asgiref>=3.2; extra == \"async\""], "extras": ["async"]},
		{"name": "werkzeug", "version": "3.0.1"},
		{"name": "ghost", "version": "0.1", "error": "METADATA missing"},
		{"name": "bad", "version": "1", "requires": ["???"]}
	]}`
	dists, err := LoadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if diff := cmp.Diff([]string{"flask", "werkzeug", "ghost", "bad"}, names(dists)); diff != "" {
		t.Fatalf("dists mismatch (-want +got):\n%s", diff)
	}
	if got := len(dists[0].Requires); got != 3 {
		t.Errorf("flask requires %d, want 3", got)
	}
	if got := dists[0].Requires[2].Marker; got != `extra == "async"` {
		t.Errorf("asgiref marker = %q", got)
	}
	for _, d := range dists[2:] {
		if !errors.Is(d.Err, errors.ErrCodeMissingMetadata) {
			t.Errorf("%s.Err = %v, want MISSING_METADATA", d.Name, d.Err)
		}
	}
}

func TestLoadJSONErrors(t *testing.T) {
	for _, doc := range []string{`{`, `{"packages":[{"version":"1"}]}`} {
		if _, err := LoadJSON(strings.NewReader(doc)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("LoadJSON(%s) err = %v, want INVALID_FORMAT", doc, err)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
packages:
  - name: flask
    version: 3.0.0
    requires:
      - Werkzeug>=3.0.0
      - "asgiref>=3.2; extra == 'async'"
    extras: [async]
  - name: werkzeug
    version: 3.0.1
`
	dists, err := LoadYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if diff := cmp.Diff([]string{"flask", "werkzeug"}, names(dists)); diff != "" {
		t.Fatalf("dists mismatch (-want +got):\n%s", diff)
	}
	if got := dists[0].Requires[1].Marker; got != "extra == 'async'" {
		t.Errorf("asgiref marker = %q", got)
	}

	empty, err := LoadYAML(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Errorf("LoadYAML(empty) = %v, %v", empty, err)
	}
	if _, err := LoadYAML(strings.NewReader("packages: {")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	venv := filepath.Join(dir, "venv")
	writeFile(t, filepath.Join(venv, "pyvenv.cfg"), "home = /usr/bin\n")
	writeFile(t, filepath.Join(venv, "lib", "python3.11", "site-packages", "idna-3.6.dist-info", "METADATA"), "Name: idna\nVersion: 3.6\n\n")

	lock := filepath.Join(dir, "poetry.lock")
	writeFile(t, lock, poetryLock)

	inv := filepath.Join(dir, "inventory.json")
	writeFile(t, inv, `{"packages":[{"name":"a","version":"1"}]}`)

	yml := filepath.Join(dir, "inventory.yml")
	writeFile(t, yml, "packages:\n  - name: b\n    version: '2'\n")

	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr errors.Code
	}{
		{"venv", venv, []string{"idna"}, ""},
		{"site-packages", filepath.Join(venv, "lib", "python3.11", "site-packages"), []string{"idna"}, ""},
		{"poetry", lock, []string{"requests", "idna"}, ""},
		{"json", inv, []string{"a"}, ""},
		{"yaml", yml, []string{"b"}, ""},
		{"missing", filepath.Join(dir, "nope.json"), nil, errors.ErrCodeFileNotFound},
		{"unsupported", filepath.Join(venv, "pyvenv.cfg"), nil, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dists, err := Load(tt.path, nil)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load err = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(tt.want, names(dists)); diff != "" {
				t.Errorf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

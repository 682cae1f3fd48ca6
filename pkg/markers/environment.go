package markers

import (
	"runtime"
	"strings"
)

const (
	extraVar = "extra"

	// DefaultPythonVersion is the interpreter version assumed when none is
	// configured.
	DefaultPythonVersion = "3.12"
)

// Environment holds the values of the PEP 508 marker variables. Field tags
// match the variable names so an [environment] table in a TOML config maps
// onto it directly.
type Environment struct {
	ImplementationName           string `toml:"implementation_name"`
	ImplementationVersion        string `toml:"implementation_version"`
	OSName                       string `toml:"os_name"`
	PlatformMachine              string `toml:"platform_machine"`
	PlatformPythonImplementation string `toml:"platform_python_implementation"`
	PlatformRelease              string `toml:"platform_release"`
	PlatformSystem               string `toml:"platform_system"`
	PlatformVersion              string `toml:"platform_version"`
	PythonFullVersion            string `toml:"python_full_version"`
	PythonVersion                string `toml:"python_version"`
	SysPlatform                  string `toml:"sys_platform"`
}

var knownVariables = []string{
	"implementation_name",
	"implementation_version",
	"os_name",
	"platform_machine",
	"platform_python_implementation",
	"platform_release",
	"platform_system",
	"platform_version",
	"python_full_version",
	"python_version",
	"sys_platform",
}

func isKnownVariable(name string) bool {
	for _, v := range knownVariables {
		if v == name {
			return true
		}
	}
	return false
}

// Lookup returns the value of a marker variable.
func (e Environment) Lookup(name string) (string, bool) {
	switch name {
	case "implementation_name":
		return e.ImplementationName, true
	case "implementation_version":
		return e.ImplementationVersion, true
	case "os_name":
		return e.OSName, true
	case "platform_machine":
		return e.PlatformMachine, true
	case "platform_python_implementation":
		return e.PlatformPythonImplementation, true
	case "platform_release":
		return e.PlatformRelease, true
	case "platform_system":
		return e.PlatformSystem, true
	case "platform_version":
		return e.PlatformVersion, true
	case "python_full_version":
		return e.PythonFullVersion, true
	case "python_version":
		return e.PythonVersion, true
	case "sys_platform":
		return e.SysPlatform, true
	}
	return "", false
}

// Default returns a CPython environment for the host operating system and
// architecture, running DefaultPythonVersion.
func Default() Environment {
	env := Environment{
		ImplementationName:           "cpython",
		PlatformPythonImplementation: "CPython",
		PlatformMachine:              machine(runtime.GOOS, runtime.GOARCH),
	}.WithPlatform(runtime.GOOS)
	return env.WithPythonVersion(DefaultPythonVersion)
}

// WithPythonVersion returns a copy of e describing the given interpreter
// version. "3.11" and "3.11.4" are both accepted; python_version is always
// reduced to major.minor.
func (e Environment) WithPythonVersion(v string) Environment {
	v = strings.TrimSpace(v)
	parts := strings.Split(v, ".")
	full := v
	if len(parts) == 2 {
		full = v + ".0"
	}
	if len(parts) >= 2 {
		e.PythonVersion = parts[0] + "." + parts[1]
	} else {
		e.PythonVersion = v
	}
	e.PythonFullVersion = full
	e.ImplementationVersion = full
	return e
}

// WithPlatform returns a copy of e for another operating system, given as a
// sys_platform value ("linux", "darwin", "win32", ...) or a Go GOOS name.
// os_name and platform_system follow from it.
func (e Environment) WithPlatform(platform string) Environment {
	platform = strings.ToLower(strings.TrimSpace(platform))
	e.OSName = "posix"
	switch {
	case platform == "windows" || platform == "win32" || platform == "cygwin":
		e.OSName = "nt"
		e.SysPlatform = "win32"
		e.PlatformSystem = "Windows"
	case platform == "darwin" || platform == "macos":
		e.SysPlatform = "darwin"
		e.PlatformSystem = "Darwin"
	case strings.HasPrefix(platform, "linux"):
		e.SysPlatform = "linux"
		e.PlatformSystem = "Linux"
	case strings.HasPrefix(platform, "freebsd"):
		e.SysPlatform = platform
		if platform == "freebsd" {
			e.SysPlatform = "freebsd14"
		}
		e.PlatformSystem = "FreeBSD"
	default:
		e.SysPlatform = platform
		e.PlatformSystem = titleCase(platform)
	}
	return e
}

// Merge returns e with every non-empty field of o applied on top.
func (e Environment) Merge(o Environment) Environment {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&e.ImplementationName, o.ImplementationName)
	set(&e.ImplementationVersion, o.ImplementationVersion)
	set(&e.OSName, o.OSName)
	set(&e.PlatformMachine, o.PlatformMachine)
	set(&e.PlatformPythonImplementation, o.PlatformPythonImplementation)
	set(&e.PlatformRelease, o.PlatformRelease)
	set(&e.PlatformSystem, o.PlatformSystem)
	set(&e.PlatformVersion, o.PlatformVersion)
	set(&e.PythonFullVersion, o.PythonFullVersion)
	set(&e.PythonVersion, o.PythonVersion)
	set(&e.SysPlatform, o.SysPlatform)
	return e
}

func machine(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	}
	return goarch
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

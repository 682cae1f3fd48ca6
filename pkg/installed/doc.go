// Package installed models the packages present in a Python environment and
// loads them from disk.
//
// A [Dist] is one installed distribution: its name, version, declared
// requirements and the extras it provides. Requirements keep their marker as
// opaque text; deciding whether a requirement applies is the job of a marker
// evaluator (see package markers).
//
// Three kinds of inventory are supported:
//
//   - a site-packages directory, reading each *.dist-info/METADATA file
//     ([LoadSitePackages]);
//   - a poetry.lock file ([LoadPoetryLock]);
//   - a JSON or YAML document listing packages ([LoadJSON], [LoadYAML]),
//     mostly useful for tests and for piping from other tools.
//
// [Load] picks the right loader from the path. Loaders never fail because of a
// single broken package: a dist whose metadata cannot be read is still
// returned, with [Dist.Err] describing the problem.
package installed

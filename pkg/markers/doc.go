// Package markers parses and evaluates PEP 508 environment markers.
//
// A marker is the part of a requirement after the semicolon:
//
//	pywin32>=300; sys_platform == "win32" and python_version >= "3.8"
//	pysocks!=1.5.7,>=1.5.6; extra == "socks"
//
// [Parse] turns a marker string into a [Marker] expression tree. [Marker.Evaluate]
// checks it against an [Environment] and a set of activated extras. Most callers
// use an [Evaluator], which caches parsed markers and implements the
// marker-evaluation capability the tree builder expects.
//
// Comparisons follow the PEP 508 rules: when both operands look like versions
// the comparison is done on versions (via golang.org/x/mod/semver after mapping
// the PEP 440 release and pre-release segments), otherwise operands are
// compared as strings. The "extra" variable is true for "==" when any activated
// extra matches after name normalization.
package markers

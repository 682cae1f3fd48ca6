package markers

import (
	"cmp"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// pep440RE matches the subset of PEP 440 that shows up in marker values:
// a release segment with optional pre, post and dev parts.
var pep440RE = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)(?:[-_.]?(a|alpha|b|beta|c|rc|pre|preview)[-_.]?(\d*))?(?:[-_.]?(post)[-_.]?(\d*))?(?:[-_.]?(dev)[-_.]?(\d*))?$`)

var preReleaseTags = map[string]string{
	"a": "a", "alpha": "a",
	"b": "b", "beta": "b",
	"c": "rc", "rc": "rc", "pre": "rc", "preview": "rc",
}

// Pre-release ranks. A dev release with no pre or post part sorts before
// every pre-release of the same release.
var preReleaseRank = map[string]int{"": 3, "a": 0, "b": 1, "rc": 2}

const devOnlyRank = -1

type version struct {
	release []int
	preRank int
	pre     int
	post    int    // -1 when absent
	dev     int    // -1 when absent
	canon   string // semver form of release and pre, empty when not representable
}

func parseVersion(s string) (version, bool) {
	m := pep440RE.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return version{}, false
	}
	v := version{post: -1, dev: -1}
	for _, p := range strings.Split(m[1], ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return version{}, false
		}
		v.release = append(v.release, n)
	}
	tag := preReleaseTags[m[2]]
	v.preRank = preReleaseRank[tag]
	v.pre = atoiOrZero(m[3])
	if m[4] != "" {
		v.post = atoiOrZero(m[5])
	}
	if m[6] != "" {
		v.dev = atoiOrZero(m[7])
	}
	if tag == "" && v.post < 0 && v.dev >= 0 {
		v.preRank = devOnlyRank
	}

	if len(v.release) <= 3 {
		parts := make([]string, 3)
		for i := range parts {
			parts[i] = "0"
			if i < len(v.release) {
				parts[i] = strconv.Itoa(v.release[i])
			}
		}
		canon := "v" + strings.Join(parts, ".")
		switch {
		case tag != "":
			canon += "-" + tag + "." + strconv.Itoa(v.pre)
		case v.preRank == devOnlyRank:
			// Numeric identifiers sort before alphanumeric ones in semver.
			canon += "-0." + strconv.Itoa(v.dev)
		}
		if semver.IsValid(canon) {
			v.canon = canon
		}
	}
	return v, true
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// compare orders two versions. Release and pre-release use semver ordering
// when both sides fit it, and segment-wise comparison otherwise. Post and
// dev parts are compared last: no post sorts first, no dev sorts last.
func (v version) compare(o version) int {
	var c int
	if v.canon != "" && o.canon != "" {
		c = semver.Compare(v.canon, o.canon)
	} else {
		c = compareRelease(v.release, o.release)
		if c == 0 {
			c = compareRelease([]int{v.preRank, v.pre}, []int{o.preRank, o.pre})
		}
	}
	if c != 0 {
		return c
	}
	if c = cmp.Compare(v.post, o.post); c != 0 {
		return c
	}
	return cmp.Compare(devKey(v.dev), devKey(o.dev))
}

func devKey(dev int) int {
	if dev < 0 {
		return math.MaxInt
	}
	return dev
}

func compareRelease(a, b []int) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// hasPrefix reports whether v's release starts with prefix.
func (v version) hasPrefix(prefix []int) bool {
	if len(v.release) < len(prefix) {
		return compareRelease(v.release, prefix) == 0
	}
	for i, p := range prefix {
		if v.release[i] != p {
			return false
		}
	}
	return true
}

// compareVersions applies a PEP 440 comparison operator. The second result is
// false when either side is not a version, in which case callers fall back to
// string comparison.
func compareVersions(lhs, op, rhs string) (bool, bool) {
	if wildcard, ok := strings.CutSuffix(rhs, ".*"); ok && (op == "==" || op == "!=") {
		l, lok := parseVersion(lhs)
		r, rok := parseVersion(wildcard)
		if !lok || !rok {
			return false, false
		}
		match := l.hasPrefix(r.release)
		return match == (op == "=="), true
	}

	l, lok := parseVersion(lhs)
	r, rok := parseVersion(rhs)
	if !lok || !rok {
		return false, false
	}
	c := l.compare(r)
	switch op {
	case "==":
		return c == 0, true
	case "!=":
		return c != 0, true
	case "<":
		return c < 0, true
	case "<=":
		return c <= 0, true
	case ">":
		return c > 0, true
	case ">=":
		return c >= 0, true
	case "~=":
		if len(r.release) < 2 {
			return false, true
		}
		return c >= 0 && l.hasPrefix(r.release[:len(r.release)-1]), true
	}
	return false, false
}

package nuget

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a NuGet package version.
//
// NuGet versions are semantic versions with an optional fourth numeric
// component (the legacy "revision", as in 4.0.0.1). The semver part is
// handled by github.com/Masterminds/semver/v3; the revision is carried
// alongside it and compared between patch and prerelease.
//
// Prerelease labels compare case-insensitively and build metadata is
// ignored, matching NuGet's rules. The zero Version is invalid and sorts
// before every parsed version.
type Version struct {
	v        *mm.Version // lower-cased, used for comparison
	revision int
	pre      string // prerelease as written
	original string
}

// ParseVersion parses a NuGet version string such as "13.0.1",
// "4.0.0.1", "1.0" or "2.0.0-Beta1+sha.abc".
func ParseVersion(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Version{}, fmt.Errorf("nuget: parse version %q: empty", raw)
	}

	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}

	parts := strings.Split(core, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("nuget: parse version %q: too many components", raw)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return Version{}, fmt.Errorf("nuget: parse version %q: invalid component %q", raw, p)
		}
	}

	revision := 0
	if len(parts) == 4 {
		r, err := strconv.Atoi(parts[3])
		if err != nil {
			return Version{}, fmt.Errorf("nuget: parse version %q: %w", raw, err)
		}
		revision = r
		parts = parts[:3]
	}

	v, err := mm.NewVersion(strings.ToLower(strings.Join(parts, ".") + suffix))
	if err != nil {
		return Version{}, fmt.Errorf("nuget: parse version %q: %w", raw, err)
	}

	pre := ""
	if suffix != "" && suffix[0] == '-' {
		pre = suffix[1:]
		if i := strings.IndexByte(pre, '+'); i >= 0 {
			pre = pre[:i]
		}
	}
	return Version{v: v, revision: revision, pre: pre, original: s}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return v.v == nil }

// Major returns the major component.
func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

// IsPrerelease reports whether v carries a prerelease label.
func (v Version) IsPrerelease() bool { return v.pre != "" }

// Original returns the version as it was written.
func (v Version) Original() string { return v.original }

// String returns the normalized form: three components, the revision only
// when non-zero, and the prerelease label. Build metadata is dropped.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	s := fmt.Sprintf("%d.%d.%d", v.v.Major(), v.v.Minor(), v.v.Patch())
	if v.revision > 0 {
		s += "." + strconv.Itoa(v.revision)
	}
	if v.pre != "" {
		s += "-" + v.pre
	}
	return s
}

// Compare returns -1, 0 or 1 depending on whether a is lower than, equal to
// or greater than b.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	if c := cmp.Or(
		cmp.Compare(a.v.Major(), b.v.Major()),
		cmp.Compare(a.v.Minor(), b.v.Minor()),
		cmp.Compare(a.v.Patch(), b.v.Patch()),
		cmp.Compare(a.revision, b.revision),
	); c != 0 {
		return c
	}
	// Equal numeric parts: Masterminds only differs on prerelease now.
	return a.v.Compare(b.v)
}

// Equal reports whether a and b are the same version.
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool { return Compare(v, other) < 0 }

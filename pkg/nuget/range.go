package nuget

import (
	"fmt"
	"strings"
)

// VersionRange is a NuGet version range in interval notation.
//
// Supported forms:
//
//	1.0          1.0 <= x
//	[1.0]        x == 1.0
//	[1.0,2.0)    1.0 <= x < 2.0
//	(1.0,)       1.0 < x
//	(,2.0]       x <= 2.0
//	1.*          1.0 <= x (floating; only the lower bound is kept)
//	*            any version
type VersionRange struct {
	min, max         Version
	hasMin, hasMax   bool
	minIncl, maxIncl bool
}

// AllVersions is the range that every version satisfies.
var AllVersions = VersionRange{}

// ParseRange parses a NuGet version range.
func ParseRange(raw string) (VersionRange, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "*" {
		return AllVersions, nil
	}

	if !strings.ContainsAny(s[:1], "[(") {
		floor, err := parseFloatingMin(s)
		if err != nil {
			return VersionRange{}, fmt.Errorf("nuget: parse range %q: %w", raw, err)
		}
		return VersionRange{min: floor, hasMin: true, minIncl: true}, nil
	}

	last := s[len(s)-1]
	if len(s) < 3 || (last != ']' && last != ')') {
		return VersionRange{}, fmt.Errorf("nuget: parse range %q: unbalanced brackets", raw)
	}
	r := VersionRange{minIncl: s[0] == '[', maxIncl: last == ']'}
	body := s[1 : len(s)-1]

	lo, hi, isInterval := strings.Cut(body, ",")
	if !isInterval {
		// [1.0] pins an exact version; (1.0) is meaningless.
		if !r.minIncl || !r.maxIncl {
			return VersionRange{}, fmt.Errorf("nuget: parse range %q: exact version must use []", raw)
		}
		v, err := ParseVersion(body)
		if err != nil {
			return VersionRange{}, err
		}
		r.min, r.max, r.hasMin, r.hasMax = v, v, true, true
		return r, nil
	}
	if strings.Contains(hi, ",") {
		return VersionRange{}, fmt.Errorf("nuget: parse range %q: too many bounds", raw)
	}

	if lo = strings.TrimSpace(lo); lo != "" {
		v, err := ParseVersion(lo)
		if err != nil {
			return VersionRange{}, err
		}
		r.min, r.hasMin = v, true
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		v, err := ParseVersion(hi)
		if err != nil {
			return VersionRange{}, err
		}
		r.max, r.hasMax = v, true
	}
	if !r.hasMin && !r.hasMax {
		return VersionRange{}, fmt.Errorf("nuget: parse range %q: no bounds", raw)
	}
	if r.hasMin && r.hasMax && Compare(r.min, r.max) > 0 {
		return VersionRange{}, fmt.Errorf("nuget: parse range %q: minimum above maximum", raw)
	}
	return r, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(raw string) VersionRange {
	r, err := ParseRange(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// ExactRange returns the range matching only v.
func ExactRange(v Version) VersionRange {
	return VersionRange{min: v, max: v, hasMin: true, hasMax: true, minIncl: true, maxIncl: true}
}

func parseFloatingMin(s string) (Version, error) {
	if !strings.Contains(s, "*") {
		return ParseVersion(s)
	}
	s = strings.TrimSuffix(s, "*")
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSuffix(s, "-")
	if s == "" {
		return ParseVersion("0.0.0")
	}
	if strings.Contains(s, "*") {
		return Version{}, fmt.Errorf("wildcard must be the last component")
	}
	return ParseVersion(s)
}

// MinVersion returns the lower bound of the range, if any.
func (r VersionRange) MinVersion() (Version, bool) { return r.min, r.hasMin }

// MaxVersion returns the upper bound of the range, if any.
func (r VersionRange) MaxVersion() (Version, bool) { return r.max, r.hasMax }

// IsExact reports whether the range pins a single version.
func (r VersionRange) IsExact() bool {
	return r.hasMin && r.hasMax && r.minIncl && r.maxIncl && r.min.Equal(r.max)
}

// Satisfies reports whether v lies within the range.
func (r VersionRange) Satisfies(v Version) bool {
	if v.IsZero() {
		return false
	}
	if r.hasMin {
		c := Compare(v, r.min)
		if c < 0 || (c == 0 && !r.minIncl) {
			return false
		}
	}
	if r.hasMax {
		c := Compare(v, r.max)
		if c > 0 || (c == 0 && !r.maxIncl) {
			return false
		}
	}
	return true
}

// String returns the normalized interval form, e.g. "[1.1.0, )",
// "[1.0.0, 2.0.0)" or "[3.1.0]". This is the label attached to
// package-to-package edges.
func (r VersionRange) String() string {
	if !r.hasMin && !r.hasMax {
		return "(, )"
	}
	if r.IsExact() {
		return "[" + r.min.String() + "]"
	}

	var b strings.Builder
	if r.hasMin && r.minIncl {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.hasMin {
		b.WriteString(r.min.String())
	}
	b.WriteString(", ")
	if r.hasMax {
		b.WriteString(r.max.String())
	}
	if r.hasMax && r.maxIncl {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

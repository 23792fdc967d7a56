package nuget

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Family is a target framework family.
type Family string

const (
	// FamilyAny matches every target; it is what unversioned lib/ folders mean.
	FamilyAny Family = "Any"
	// FamilyNetFramework is the Windows-only .NET Framework (net45, net48).
	FamilyNetFramework Family = ".NETFramework"
	// FamilyNetCoreApp is .NET Core and .NET 5+ (netcoreapp3.1, net8.0).
	FamilyNetCoreApp Family = ".NETCoreApp"
	// FamilyNetStandard is the .NET Standard API contract (netstandard2.0).
	FamilyNetStandard Family = ".NETStandard"
)

// Framework identifies a target framework such as net8.0 or netstandard2.0.
//
// net5.0 and later belong to [FamilyNetCoreApp]; they differ from
// netcoreapp3.1 only by version. Platform holds an OS suffix like "windows"
// (lower-cased, without its version).
type Framework struct {
	Family   Family
	Major    int
	Minor    int
	Build    int
	Platform string
}

// AnyFramework is the framework-neutral target.
var AnyFramework = Framework{Family: FamilyAny}

// ParseFramework parses a framework moniker. It accepts NuGet folder names
// ("net48", "net461", "netstandard2.0", "netcoreapp3.1", "net8.0-windows",
// "any") and the long forms used in lock files and feed metadata
// (".NETFramework,Version=v4.7.2", ".NETStandard2.0").
func ParseFramework(raw string) (Framework, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "any" || s == "dotnet" {
		return AnyFramework, nil
	}
	if strings.HasPrefix(s, ".") {
		return parseLongFramework(raw, s[1:])
	}

	name, platform, _ := strings.Cut(s, "-")
	platform = strings.TrimRight(platform, "0123456789.")

	var f Framework
	var err error
	switch {
	case strings.HasPrefix(name, "netstandard"):
		f, err = parseDotted(FamilyNetStandard, strings.TrimPrefix(name, "netstandard"))
	case strings.HasPrefix(name, "netcoreapp"):
		f, err = parseDotted(FamilyNetCoreApp, strings.TrimPrefix(name, "netcoreapp"))
	case strings.HasPrefix(name, "net"):
		digits := strings.TrimPrefix(name, "net")
		if strings.Contains(digits, ".") {
			f, err = parseDotted(FamilyNetCoreApp, digits)
			if err == nil && f.Major < 5 {
				err = fmt.Errorf("dotted net version below 5")
			}
		} else {
			f, err = parseCompact(FamilyNetFramework, digits)
		}
	default:
		err = fmt.Errorf("unknown framework family")
	}
	if err != nil {
		return Framework{}, fmt.Errorf("nuget: parse framework %q: %w", raw, err)
	}
	if platform != "" && (f.Family != FamilyNetCoreApp || f.Major < 5) {
		return Framework{}, fmt.Errorf("nuget: parse framework %q: platform suffix requires net5.0 or later", raw)
	}
	f.Platform = platform
	return f, nil
}

// MustParseFramework is like ParseFramework but panics on error.
func MustParseFramework(raw string) Framework {
	f, err := ParseFramework(raw)
	if err != nil {
		panic(err)
	}
	return f
}

func parseLongFramework(raw, s string) (Framework, error) {
	families := []struct {
		prefix string
		family Family
	}{
		{"netframework", FamilyNetFramework},
		{"netstandard", FamilyNetStandard},
		{"netcoreapp", FamilyNetCoreApp},
	}
	for _, fam := range families {
		if !strings.HasPrefix(s, fam.prefix) {
			continue
		}
		rest := strings.TrimPrefix(s, fam.prefix)
		rest = strings.TrimPrefix(rest, ",version=")
		rest = strings.TrimPrefix(rest, "v")
		rest, _, _ = strings.Cut(rest, ",") // profile segment
		return parseLongVersion(raw, fam.family, rest)
	}
	return Framework{}, fmt.Errorf("nuget: parse framework %q: unknown framework family", raw)
}

func parseLongVersion(raw string, family Family, v string) (Framework, error) {
	f, err := parseDotted(family, v)
	if err != nil {
		return Framework{}, fmt.Errorf("nuget: parse framework %q: %w", raw, err)
	}
	return f, nil
}

// parseDotted parses "2.0", "3.1" or "4.7.2".
func parseDotted(family Family, s string) (Framework, error) {
	if s == "" {
		return Framework{}, fmt.Errorf("missing version")
	}
	if !strings.Contains(s, ".") {
		return parseCompact(family, s)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return Framework{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Framework{}, fmt.Errorf("invalid version %q", s)
		}
		if i < 3 {
			nums[i] = n
		}
	}
	return Framework{Family: family, Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

// parseCompact parses the undotted digits of "net461" or "netstandard20":
// one digit per component.
func parseCompact(family Family, s string) (Framework, error) {
	if s == "" || len(s) > 3 || strings.Trim(s, "0123456789") != "" {
		return Framework{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, r := range s {
		nums[i] = int(r - '0')
	}
	return Framework{Family: family, Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

// String returns the NuGet folder name of the framework.
func (f Framework) String() string {
	switch f.Family {
	case FamilyAny, "":
		return "any"
	case FamilyNetStandard:
		return fmt.Sprintf("netstandard%d.%d", f.Major, f.Minor)
	case FamilyNetFramework:
		s := fmt.Sprintf("net%d%d", f.Major, f.Minor)
		if f.Build > 0 {
			s += strconv.Itoa(f.Build)
		}
		return s
	default:
		s := fmt.Sprintf("netcoreapp%d.%d", f.Major, f.Minor)
		if f.Major >= 5 {
			s = fmt.Sprintf("net%d.%d", f.Major, f.Minor)
		}
		if f.Platform != "" {
			s += "-" + f.Platform
		}
		return s
	}
}

func (f Framework) compareVersion(other Framework) int {
	return cmp.Or(
		cmp.Compare(f.Major, other.Major),
		cmp.Compare(f.Minor, other.Minor),
		cmp.Compare(f.Build, other.Build),
	)
}

// netStandardLevel returns the highest .NET Standard version that target
// implements.
func netStandardLevel(target Framework) (Framework, bool) {
	std := func(major, minor int) (Framework, bool) {
		return Framework{Family: FamilyNetStandard, Major: major, Minor: minor}, true
	}
	switch target.Family {
	case FamilyNetCoreApp:
		switch {
		case target.Major <= 1:
			return std(1, 6)
		case target.Major == 2:
			return std(2, 0)
		default:
			return std(2, 1)
		}
	case FamilyNetFramework:
		switch v := target; {
		case v.compareVersion(Framework{Major: 4, Minor: 6, Build: 1}) >= 0:
			return std(2, 0)
		case v.compareVersion(Framework{Major: 4, Minor: 6}) >= 0:
			return std(1, 3)
		case v.compareVersion(Framework{Major: 4, Minor: 5, Build: 1}) >= 0:
			return std(1, 2)
		case v.compareVersion(Framework{Major: 4, Minor: 5}) >= 0:
			return std(1, 1)
		}
	}
	return Framework{}, false
}

// Compatible reports whether a project targeting target can consume an asset
// built for candidate.
func Compatible(target, candidate Framework) bool {
	if candidate.Family == FamilyAny {
		return true
	}
	if candidate.Platform != "" && candidate.Platform != target.Platform {
		return false
	}
	if candidate.Family == target.Family {
		return candidate.compareVersion(target) <= 0
	}
	if candidate.Family == FamilyNetStandard {
		level, ok := netStandardLevel(target)
		return ok && candidate.compareVersion(level) <= 0
	}
	return false
}

// precedence ranks a compatible candidate: lower is preferred.
func precedence(target, candidate Framework) int {
	switch {
	case candidate.Family == target.Family:
		return 0
	case candidate.Family == FamilyNetStandard:
		return 1
	default:
		return 2
	}
}

// Nearest returns the candidate that best matches target: compatible, from
// the closest family (the target's own, then .NET Standard, then any), and
// the highest version within it. Platform-specific candidates win ties.
func Nearest(target Framework, candidates []Framework) (Framework, bool) {
	var best Framework
	found := false
	for _, c := range candidates {
		if !Compatible(target, c) {
			continue
		}
		if !found || better(target, c, best) {
			best, found = c, true
		}
	}
	return best, found
}

func better(target, a, b Framework) bool {
	if pa, pb := precedence(target, a), precedence(target, b); pa != pb {
		return pa < pb
	}
	if c := a.compareVersion(b); c != 0 {
		return c > 0
	}
	return a.Platform != "" && b.Platform == ""
}

// Reduce picks the nearest folder for target among framework folder names,
// such as the directories under a package's lib/. Names that do not parse
// as frameworks are ignored. The chosen name is returned as given.
func Reduce(target Framework, folders []string) (string, bool) {
	parsed := make([]Framework, 0, len(folders))
	names := make(map[Framework]string, len(folders))
	for _, name := range folders {
		f, err := ParseFramework(name)
		if err != nil {
			continue
		}
		if _, dup := names[f]; !dup {
			names[f] = name
			parsed = append(parsed, f)
		}
	}
	best, ok := Nearest(target, parsed)
	if !ok {
		return "", false
	}
	return names[best], true
}

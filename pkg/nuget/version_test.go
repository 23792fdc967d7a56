package nuget

import (
	"slices"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0.0", "1.0.0"},
		{"1.0", "1.0.0"},
		{"1", "1.0.0"},
		{"4.0.0.1", "4.0.0.1"},
		{"4.0.0.0", "4.0.0"},
		{"2.0.0-Beta1", "2.0.0-Beta1"},
		{"2.0.0-beta.1+sha.abc", "2.0.0-beta.1"},
		{"1.2.3.4-rc", "1.2.3.4-rc"},
		{" 13.0.3 ", "13.0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.input, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVersionErrors(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3.4.5", "1..2", "1.x", "-beta"} {
		if _, err := ParseVersion(input); err == nil {
			t.Errorf("ParseVersion(%q) error = nil, want error", input)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0.1", "1.0.1", -1},
		{"1.0.0-beta", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-BETA", "1.0.0-beta", 0},
		{"1.0.0+build1", "1.0.0+build2", 0},
		{"1.0.0.1-beta", "1.0.0.1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Compare(MustParseVersion(tt.a), MustParseVersion(tt.b)); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareZero(t *testing.T) {
	if Compare(Version{}, MustParseVersion("0.0.1")) != -1 {
		t.Error("zero version should sort first")
	}
	if Compare(Version{}, Version{}) != 0 {
		t.Error("zero versions should be equal")
	}
}

func TestVersionSort(t *testing.T) {
	raw := []string{"2.0.0", "1.0.0-rc.1", "1.0.0", "1.0.0.5", "0.9.0"}
	vs := make([]Version, len(raw))
	for i, r := range raw {
		vs[i] = MustParseVersion(r)
	}
	slices.SortFunc(vs, Compare)

	var got []string
	for _, v := range vs {
		got = append(got, v.String())
	}
	want := []string{"0.9.0", "1.0.0-rc.1", "1.0.0", "1.0.0.5", "2.0.0"}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

package nuget

import "testing"

func TestParseFramework(t *testing.T) {
	tests := []struct {
		input  string
		family Family
		want   string
	}{
		{"net48", FamilyNetFramework, "net48"},
		{"net461", FamilyNetFramework, "net461"},
		{"net45", FamilyNetFramework, "net45"},
		{"net40", FamilyNetFramework, "net40"},
		{"netstandard2.0", FamilyNetStandard, "netstandard2.0"},
		{"netstandard1.3", FamilyNetStandard, "netstandard1.3"},
		{"netcoreapp3.1", FamilyNetCoreApp, "netcoreapp3.1"},
		{"net6.0", FamilyNetCoreApp, "net6.0"},
		{"NET8.0", FamilyNetCoreApp, "net8.0"},
		{"net8.0-windows", FamilyNetCoreApp, "net8.0-windows"},
		{"net6.0-windows10.0.19041", FamilyNetCoreApp, "net6.0-windows"},
		{"any", FamilyAny, "any"},
		{"", FamilyAny, "any"},
		{".NETFramework,Version=v4.7.2", FamilyNetFramework, "net472"},
		{".NETStandard2.0", FamilyNetStandard, "netstandard2.0"},
		{".NETCoreApp,Version=v3.1", FamilyNetCoreApp, "netcoreapp3.1"},
		{".NETCoreApp,Version=v8.0", FamilyNetCoreApp, "net8.0"},
		{".NETFramework4.5", FamilyNetFramework, "net45"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFramework(tt.input)
			if err != nil {
				t.Fatalf("ParseFramework(%q) error = %v", tt.input, err)
			}
			if f.Family != tt.family {
				t.Errorf("Family = %q, want %q", f.Family, tt.family)
			}
			if f.String() != tt.want {
				t.Errorf("String() = %q, want %q", f.String(), tt.want)
			}
		})
	}
}

func TestParseFrameworkErrors(t *testing.T) {
	for _, input := range []string{"portable-net45+win8", "monoandroid10", "net4.8", "net48-windows", "uap10.0", ".NETPortable,Version=v4.5"} {
		if _, err := ParseFramework(input); err == nil {
			t.Errorf("ParseFramework(%q) error = nil, want error", input)
		}
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		target, candidate string
		want              bool
	}{
		{"net8.0", "net8.0", true},
		{"net8.0", "net6.0", true},
		{"net6.0", "net8.0", false},
		{"net6.0", "netcoreapp3.1", true},
		{"net6.0", "netstandard2.1", true},
		{"net6.0", "netstandard2.0", true},
		{"net6.0", "net48", false},
		{"net48", "net6.0", false},
		{"net48", "netstandard2.0", true},
		{"net48", "netstandard2.1", false},
		{"net461", "netstandard2.0", true},
		{"net46", "netstandard1.3", true},
		{"net46", "netstandard1.4", false},
		{"net451", "netstandard1.2", true},
		{"net45", "netstandard1.1", true},
		{"net45", "netstandard1.2", false},
		{"net40", "netstandard1.0", false},
		{"netcoreapp2.1", "netstandard2.0", true},
		{"netcoreapp2.1", "netstandard2.1", false},
		{"netcoreapp1.1", "netstandard1.6", true},
		{"netstandard2.0", "netstandard1.6", true},
		{"netstandard2.0", "net461", false},
		{"net8.0", "any", true},
		{"net48", "any", true},
		{"net8.0-windows", "net8.0", true},
		{"net8.0-windows", "net8.0-windows", true},
		{"net8.0", "net8.0-windows", false},
	}
	for _, tt := range tests {
		t.Run(tt.target+"_"+tt.candidate, func(t *testing.T) {
			got := Compatible(MustParseFramework(tt.target), MustParseFramework(tt.candidate))
			if got != tt.want {
				t.Errorf("Compatible(%s, %s) = %v, want %v", tt.target, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		folders []string
		want    string
		wantOK  bool
	}{
		{"exact match", "net6.0", []string{"net45", "netstandard2.0", "net6.0"}, "net6.0", true},
		{"highest lower version", "net8.0", []string{"netcoreapp3.1", "net6.0", "netstandard2.1"}, "net6.0", true},
		{"own family beats higher standard", "net8.0", []string{"netcoreapp2.0", "netstandard2.1"}, "netcoreapp2.0", true},
		{"standard fallback", "net6.0", []string{"net45", "netstandard1.3", "netstandard2.0"}, "netstandard2.0", true},
		{"any fallback", "net48", []string{"netcoreapp3.1", "any"}, "any", true},
		{"framework only asset under core", "net6.0", []string{"net48"}, "", false},
		{"unparsable folders ignored", "net48", []string{"portable-net45+win8", "net40"}, "net40", true},
		{"platform specific preferred", "net8.0-windows", []string{"net8.0", "net8.0-windows7.0"}, "net8.0-windows7.0", true},
		{"empty", "net8.0", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reduce(MustParseFramework(tt.target), tt.folders)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Reduce() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

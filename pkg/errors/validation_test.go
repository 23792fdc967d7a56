package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Serilog", false},
		{"valid dotted", "Newtonsoft.Json", false},
		{"valid with dash", "Microsoft.Extensions.Logging-Preview", false},
		{"valid with underscore", "my_package", false},
		{"valid single char", "A", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 101), true},
		{"path traversal", "foo/../bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"space", "foo bar", true},
		{"leading dot", ".foo", true},
		{"double dot", "foo..bar", true},
		{"trailing dash", "foo-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidatePackageID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateProjectPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "src/App/App.csproj", false},
		{"absolute", "/home/me/App.csproj", false},
		{"parent", "../App.sln", false},
		{"windows", `C:\src\App.csproj`, false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"null byte", "App\x00.csproj", true},
		{"newline", "App\n.csproj", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://api.nuget.org/v3/index.json", false},
		{"http", "http://localhost:5555/v3/index.json", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com/feed", true},
		{"file", "file:///etc/passwd", true},
		{"no scheme", "api.nuget.org/v3/index.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

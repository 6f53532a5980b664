package errors

import (
	"strings"
	"testing"
)

func TestValidateComponentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid simple", input: "grid", wantErr: false},
		{name: "valid with underscore", input: "heat_pump", wantErr: false},
		{name: "valid with dot", input: "zone1.demand", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 257), wantErr: true},
		{name: "control character", input: "grid\n", wantErr: true},
		{name: "path traversal", input: "../etc/passwd", wantErr: true},
		{name: "double slash", input: "a//b", wantErr: true},
		{name: "backslash", input: "a\\b", wantErr: true},
		{name: "null byte", input: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidComponent) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidComponent)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid relative", input: "out/diagram.drawio", wantErr: false},
		{name: "valid absolute", input: "/tmp/diagram.drawio", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 501), wantErr: true},
		{name: "null byte", input: "out\x00.drawio", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "six digit", input: "#4c00ff", wantErr: false},
		{name: "three digit", input: "#f0f", wantErr: false},
		{name: "uppercase", input: "#ABCDEF", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "missing hash", input: "4c00ff", wantErr: true},
		{name: "wrong length", input: "#4c00f", wantErr: true},
		{name: "non-hex", input: "#zzzzzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCarrier) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidCarrier)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		schemes []string
		wantErr bool
	}{
		{name: "http", input: "http://localhost:8080", schemes: []string{"http", "https"}, wantErr: false},
		{name: "https", input: "https://example.com/v1/layout", schemes: []string{"http", "https"}, wantErr: false},
		{name: "redis", input: "redis://localhost:6379/0", schemes: []string{"redis", "rediss"}, wantErr: false},
		{name: "redis tls", input: "rediss://cache.internal:6380", schemes: []string{"redis", "rediss"}, wantErr: false},
		{name: "mongodb srv", input: "mongodb+srv://cluster.example.net", schemes: []string{"mongodb", "mongodb+srv"}, wantErr: false},
		{name: "empty", input: "", schemes: []string{"http"}, wantErr: true},
		{name: "file scheme", input: "file:///etc/passwd", schemes: []string{"http", "https"}, wantErr: true},
		{name: "no scheme", input: "example.com", schemes: []string{"http", "https"}, wantErr: true},
		{name: "scheme mismatch", input: "http://localhost:6379", schemes: []string{"redis", "rediss"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input, tt.schemes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q, %v) error = %v, wantErr %v", tt.input, tt.schemes, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

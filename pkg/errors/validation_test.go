package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute", "/home/user", false},
		{"relative", "projects/src", false},
		{"windows drive", `C:\Users`, false},

		{"empty", "", true},
		{"too long", "/" + strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"svg", "png", "json"}
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"upper", "PNG", false},
		{"padded", " json ", false},

		{"empty", "", true},
		{"unknown", "gif", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.input, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"typical", 1280, 800, false},
		{"max", MaxViewportPx, MaxViewportPx, false},
		{"zero width", 0, 100, true},
		{"negative", 100, -1, true},
		{"too large", MaxViewportPx + 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"clear", "", false},
		{"dotted", ".go", false},
		{"bare", "mp4", false},

		{"only dot", ".", true},
		{"too long", ".abcdefghijk", true},
		{"path", "a/b", true},
		{"double", ".tar.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtension(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExtension(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

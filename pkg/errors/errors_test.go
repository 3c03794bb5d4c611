package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "new",
			err:  New(ErrCodeInvalidFormat, "unsupported format %q", "gif"),
			want: `INVALID_FORMAT: unsupported format "gif"`,
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeFileNotFound, os.ErrNotExist, "%s does not exist", "/data"),
			want: "FILE_NOT_FOUND: /data does not exist: file does not exist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeScanCancelled, context.Canceled, "scan of %s cancelled", "/data")
	if !errors.Is(err, context.Canceled) {
		t.Error("context.Canceled lost in the chain")
	}
	if errors.Unwrap(err) != context.Canceled {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
	var e *Error
	if !errors.As(fmt.Errorf("render: %w", err), &e) || e.Code != ErrCodeScanCancelled {
		t.Errorf("As through fmt.Errorf = %v", e)
	}
}

func TestIs(t *testing.T) {
	cancelled := Wrap(ErrCodeScanCancelled, context.Canceled, "scan cancelled")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching", New(ErrCodeInvalidInput, "bad"), ErrCodeInvalidInput, true},
		{"other code", New(ErrCodeInvalidInput, "bad"), ErrCodeNotFound, false},
		{"through fmt.Errorf", fmt.Errorf("load: %w", cancelled), ErrCodeScanCancelled, true},
		{"inner coded error", Wrap(ErrCodeInternal, cancelled, "view"), ErrCodeScanCancelled, true},
		{"outer coded error", Wrap(ErrCodeInternal, cancelled, "view"), ErrCodeInternal, true},
		{"plain", context.Canceled, ErrCodeScanCancelled, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidConfig, "bad theme"), ErrCodeInvalidConfig},
		{"outermost wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidInput, "x"), "config.toml"), ErrCodeInvalidConfig},
		{"wrapped by fmt", fmt.Errorf("open: %w", New(ErrCodeFileNotFound, "x")), ErrCodeFileNotFound},
		{"plain", os.ErrPermission, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeNotFound, "src/lib not found in /data"), "src/lib not found in /data"},
		{"wrapped by fmt", fmt.Errorf("treemap/svg: %w", New(ErrCodeUnsupported, "no rsvg-convert")), "no rsvg-convert"},
		{"plain", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

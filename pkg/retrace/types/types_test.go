package types_test

import (
	"errors"
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/types"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  error
	}{
		{"0", 0, nil},
		{"512", 512, nil},
		{"512B", 512, nil},
		{"1K", types.KiB, nil},
		{"1KiB", types.KiB, nil},
		{"100k", 100 * types.KiB, nil},
		{"1M", types.MiB, nil},
		{"1.5M", types.MiB + types.MiB/2, nil},
		{"2G", 2 * types.GiB, nil},
		{" 1 MiB ", types.MiB, nil},
		{"", 0, types.ErrInvalidSize},
		{"abc", 0, types.ErrInvalidSize},
		{"1T", 0, types.ErrInvalidSize},
		{"-5M", 0, types.ErrNegativeSize},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseSize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSize(%q): expected error %v, got %v", tt.input, tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	if got := types.FormatSize(types.MiB); got != "1.0 MiB" {
		t.Errorf("FormatSize(MiB) = %q", got)
	}
	if got := types.FormatSize(0); got != "0 B" {
		t.Errorf("FormatSize(0) = %q", got)
	}
}

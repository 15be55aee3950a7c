package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Ana  Costa  ", "Ana Costa"},
		{"Ana\tCosta", "Ana Costa"},
		{"Ana\n\nCosta", "Ana Costa"},
		{"   ", ""},
		{"", ""},
		{"Ana", "Ana"},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	if got := NormalizeTag("  Hair Styling "); got != "hair styling" {
		t.Errorf("NormalizeTag = %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Maria.Silva@Example.COM "); got != "maria.silva@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Hair", "hair", "", "  Nails ", "NAILS", "makeup"})
	want := []string{"hair", "nails", "makeup"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}

	if got := NormalizeTags(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %v", got)
	}
}

package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hanoi", "Hanoi"},
		{"surrounding space", "  Hanoi  ", "Hanoi"},
		{"internal runs", "Ha   Long\tBay", "Ha Long Bay"},
		{"empty", "", ""},
		{"only space", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Anna@Example.COM "); got != "anna@example.com" {
		t.Errorf("unexpected email normalization: %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+84 912 345 678", "+84912345678"},
		{"(091) 234-5678", "0912345678"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.input); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

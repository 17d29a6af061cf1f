package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hanoi", "hanoi"},
		{"spaces", "Ha Long Bay", "ha-long-bay"},
		{"punctuation", "Ha Long Bay!", "ha-long-bay"},
		{"run of separators", "Sapa -- Trekking", "sapa-trekking"},
		{"leading and trailing junk", "  !Hue City Tour?  ", "hue-city-tour"},
		{"digits", "3 Days Mekong Delta", "3-days-mekong-delta"},
		{"diacritics dropped", "Đà Nẵng", "n-ng"},
		{"empty", "", ""},
		{"only separators", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMakeIsWellFormed(t *testing.T) {
	inputs := []string{"Hanoi City Tour", "Sa Pa & Fansipan!", "--x--", "A  B   C"}
	for _, in := range inputs {
		got := Make(in)
		if got == "" {
			continue
		}
		if !Valid(got) {
			t.Errorf("Make(%q) = %q is not a valid slug", in, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"ha-long-bay", true},
		{"hanoi", true},
		{"3-days", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"UPPER", false},
		{"with space", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.slug); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "john doe", "john doe"},
		{"case and punctuation", "John  DOE\nProject: EEG-AI!!!", "john doe project eeg ai"},
		{"leading and trailing noise", "  --hello--  ", "hello"},
		{"only punctuation", "!!! ... ///", ""},
		{"digits kept", "go 1.24", "go 1 24"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "John  DOE\nProject: EEG-AI!!!", "already normal", "  mixed UP, text;  "}
	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", s, twice, once)
		}
	}
}

func TestHashIgnoresCosmeticDifferences(t *testing.T) {
	a := Hash("John  DOE\nProject: EEG-AI!!!")
	b := Hash("john doe project eeg ai")
	if a != b {
		t.Fatalf("hashes differ: %s vs %s", a, b)
	}

	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}

	if Hash("john doe") == Hash("jane doe") {
		t.Fatalf("distinct texts must not collide on trivial inputs")
	}
}

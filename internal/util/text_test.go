package util

import "testing"

func TestNormalizeCell(t *testing.T) {
	cases := map[string]string{
		"  Channel   Tray ": "Channel Tray",
		"תעלה מלאה":    "תעלה מלאה",
		"\tTCS\n":           "TCS",
	}
	for input, want := range cases {
		if got := NormalizeCell(input); got != want {
			t.Fatalf("NormalizeCell(%q)=%q want %q", input, got, want)
		}
	}
	if got := NormalizeColumn(" English term "); got != "english term" {
		t.Fatalf("got %q", got)
	}
}

func TestIsDigits(t *testing.T) {
	if !IsDigits("100") || IsDigits("") || IsDigits("10a") || IsDigits("-5") {
		t.Fatal("IsDigits mismatch")
	}
}

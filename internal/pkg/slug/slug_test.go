package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Deals, Inc.", "acme-deals-inc"},
		{"  Trend Picks Direct ", "trend-picks-direct"},
		{"Home & Garden", "home-garden"},
		{"UPPER lower 42", "upper-lower-42"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Fatalf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Wireless  Earbuds", "wireless earbuds"},
		{"  WIRELESS EARBUDS  ", "wireless earbuds"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Key(tc.in); got != tc.want {
			t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKeyMatchesCaseInsensitiveDuplicates(t *testing.T) {
	if Key("Ultra HD Monitor") != Key("ultra hd MONITOR") {
		t.Fatal("expected case-insensitive names to share a key")
	}
}

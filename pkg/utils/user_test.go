package utils

import "testing"

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"Ada", "Ada", ""},
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"  Ada   King  Lovelace ", "Ada", "King Lovelace"},
	}
	for _, tt := range tests {
		first, last := SplitFullName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitFullName(%q) = (%q, %q), want (%q, %q)", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestJoinFullName(t *testing.T) {
	if got := JoinFullName("Ada", "Lovelace"); got != "Ada Lovelace" {
		t.Errorf("got %q", got)
	}
	if got := JoinFullName(" Ada ", ""); got != "Ada" {
		t.Errorf("got %q", got)
	}
}

package textunits

import "testing"

func TestCount(t *testing.T) {
	if got := Count("hello"); got != 5 {
		t.Fatalf("ascii: got %d", got)
	}
	if got := Count("héllo"); got != 5 {
		t.Fatalf("bmp accents stay one unit: got %d", got)
	}
	// Astral characters are surrogate pairs.
	if got := Count("𝄞"); got != 2 {
		t.Fatalf("astral char must count 2, got %d", got)
	}
	if got := Count("a𝄞b"); got != 4 {
		t.Fatalf("mixed: got %d", got)
	}
}

func TestTruncateKeepsPairsWhole(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel" {
		t.Fatalf("ascii cut: got %q", got)
	}
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("short strings pass through: got %q", got)
	}
	// A pair that would straddle the limit is dropped entirely.
	if got := Truncate("a𝄞", 2); got != "a" {
		t.Fatalf("surrogate pair must not be split, got %q", got)
	}
	if got := Truncate("a𝄞", 3); got != "a𝄞" {
		t.Fatalf("pair fits exactly, got %q", got)
	}
}

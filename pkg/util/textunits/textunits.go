// Package textunits measures strings in UTF-16 code units, the unit
// client text fields count in. Characters outside the basic plane
// (emoji, musical symbols) cost two units.
package textunits

// Count returns the UTF-16 length of s.
func Count(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Truncate cuts s down to at most max UTF-16 code units without
// splitting a surrogate pair.
func Truncate(s string, max int) string {
	n := 0
	for i, r := range s {
		units := 1
		if r > 0xFFFF {
			units = 2
		}
		if n+units > max {
			return s[:i]
		}
		n += units
	}
	return s
}

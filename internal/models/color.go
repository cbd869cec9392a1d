package models

import "regexp"

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a hex color like #FF5733
func ValidColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

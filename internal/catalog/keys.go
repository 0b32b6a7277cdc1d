package catalog

import "strings"

// SpaceKey is the key identifier of the space bar.
const SpaceKey = " "

// KeyLabel returns the display label of a key identifier.
func KeyLabel(key string) string {
	if key == SpaceKey {
		return "SPACE"
	}
	return strings.ToUpper(key)
}

// NormalizeKey maps raw key input to the identifier used by unlocked key lists.
func NormalizeKey(key string) string {
	if key == SpaceKey {
		return key
	}
	return strings.ToLower(key)
}

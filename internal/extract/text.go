package extract

import "strings"

// collapseWhitespace trims and folds every whitespace run into a single space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capRunes truncates s to at most n characters
func capRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

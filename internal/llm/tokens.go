package llm

import "unicode/utf16"

// EstimateTokens is a rough ~4 characters per token count, measured in
// UTF-16 code units. Used for usage accounting only.
func EstimateTokens(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return (n + 3) / 4
}

package chunker

import "strings"

// EstimateTokens approximates the LLM token count of text, for logging only.
// Report prose runs about 1.33 tokens per word; tables full of numbers run
// closer to one token per 4 characters, so take the larger of the two.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byWords := int(float64(len(strings.Fields(text))) * 1.33)
	byChars := len([]rune(text)) / 4
	return max(byWords, byChars, 1)
}

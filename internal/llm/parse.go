package llm

import (
	"regexp"
	"strings"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/validate"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*\\n?")
	fenceClose = regexp.MustCompile("\\n?\\s*```$")
)

// stripFences removes a ``` or ```json wrapper
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = fenceOpen.ReplaceAllString(cleaned, "")
		cleaned = fenceClose.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// extractJSON recovers the object from a reply. Text that does not start
// with "{" is cut to the span from the first "{" to the last "}".
func extractJSON(text string) string {
	cleaned := stripFences(text)
	if strings.HasPrefix(cleaned, "{") {
		return cleaned
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// parseVerdict turns assistant text into a validated verdict
func parseVerdict(content string) (model.Verdict, error) {
	return validate.VerdictJSON(extractJSON(content))
}

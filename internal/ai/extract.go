package ai

import (
	"regexp"
	"strings"
)

// Models wrap JSON in markdown fences or prose more often than not.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON pulls the first JSON object out of raw model output:
// markdown code fences are stripped, then the outermost brace-delimited
// block is taken. Returns false when no object is present.
func ExtractJSON(raw string) ([]byte, bool) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	match := jsonBlock.FindString(s)
	if match == "" {
		return nil, false
	}
	return []byte(match), true
}

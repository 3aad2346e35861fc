package llm

import (
	"encoding/json"
	"strings"
)

// cleanResponse strips markdown code fences the model tends to wrap JSON in.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// repairControlChars replaces raw control characters with spaces. Models
// occasionally emit literal newlines or tabs inside JSON strings, which a
// strict parser rejects.
func repairControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return ' '
		}
		return r
	}, text)
}

// extractJSON normalizes raw model text into valid JSON: fence stripping,
// strict parse, one repair pass, else ParseError.
func extractJSON(text string) (json.RawMessage, error) {
	cleaned := cleanResponse(text)
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	repaired := repairControlChars(cleaned)
	if json.Valid([]byte(repaired)) {
		return json.RawMessage(repaired), nil
	}

	return nil, &ParseError{Raw: text}
}

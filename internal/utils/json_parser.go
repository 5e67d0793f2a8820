package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes model output into target. Chat models wrap JSON in
// prose or markdown fences and occasionally emit trailing commas, bare keys
// or single quotes; each candidate below is tried in order until one decodes.
func ParseAIJSON(input string, target any) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	extractors := []func(string) string{
		func(s string) string { return s },
		extractFromFence,
		extractFirstObject,
		repairJSON,
		func(s string) string { return repairJSON(extractFirstObject(s)) },
	}

	for _, extract := range extractors {
		candidate := extract(input)
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncate(input, 100))
}

func extractFromFence(input string) string {
	m := fencedJSONRe.FindStringSubmatch(input)
	if len(m) < 2 {
		return ""
	}
	content := strings.TrimSpace(m[1])
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return content
	}
	return ""
}

// extractFirstObject returns the first balanced {...} or [...] in input
func extractFirstObject(input string) string {
	start := strings.IndexAny(input, "{[")
	if start < 0 {
		return ""
	}
	open := rune(input[start])
	close := '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString, escape := false, false
	for i, ch := range input[start:] {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[start : start+i+1]
			}
		}
	}
	return ""
}

func repairJSON(input string) string {
	if input == "" {
		return ""
	}
	s := trailingCommaRe.ReplaceAllString(input, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = singleToDoubleQuotes(s)
	return controlCharRe.ReplaceAllString(s, "")
}

// singleToDoubleQuotes rewrites single-quoted strings as double-quoted ones
func singleToDoubleQuotes(input string) string {
	var b strings.Builder
	inDouble, inSingle, escape := false, false, false
	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && inSingle:
			b.WriteString(`\"`)
			continue
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			ch = '"'
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

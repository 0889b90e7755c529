package llm

import (
	"encoding/json"
	"strings"
)

// ValidationWarning describes a lightweight post-join sanity check that
// failed. It never blocks the continuation loop from returning content;
// validation is advisory, not a gate — Complete returns the warnings in
// CompletionResult.Warnings alongside the content.
type ValidationWarning struct {
	Check   string
	Message string
}

// ValidateJoined runs the advisory checks appropriate to ct against the
// final joined content.
func ValidateJoined(ct ContentType, content string) []ValidationWarning {
	var warnings []ValidationWarning

	if !bracketsBalanced(content) {
		warnings = append(warnings, ValidationWarning{
			Check:   "balanced_brackets",
			Message: "joined content has unbalanced {}/[]/() after the continuation cascade",
		})
	}

	if ct == ContentJSON || ct == ContentJSONCode {
		if _, ok := largestJSONPrefix(content); !ok {
			warnings = append(warnings, ValidationWarning{
				Check:   "json_prefix",
				Message: "no parseable JSON prefix found in joined content",
			})
		}
	}

	return warnings
}

func bracketsBalanced(s string) bool {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	inString := false
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			inString = true
			quote = c
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// largestJSONPrefix walks the string trying progressively shorter
// trailing truncations of the first '{'/'[' onward until json.Valid
// accepts a prefix, returning that prefix. This tolerates a dangling
// partial token at the very end without failing the whole check.
func largestJSONPrefix(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	candidate := s[start:]
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}

	var dec = func(b []byte) bool {
		var v any
		return json.Unmarshal(b, &v) == nil
	}
	for end := len(candidate); end > 0; end-- {
		trimmed := strings.TrimRight(candidate[:end], " \t\n\r,")
		if trimmed == "" {
			continue
		}
		if dec([]byte(trimmed)) {
			return trimmed, true
		}
	}
	return "", false
}

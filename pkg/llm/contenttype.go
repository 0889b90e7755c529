package llm

import "strings"

// ContentType selects overlap heuristics and continuation prompt wording.
type ContentType string

const (
	ContentCode     ContentType = "code"
	ContentJSON     ContentType = "json"
	ContentDiff     ContentType = "diff"
	ContentJSONCode ContentType = "json_code"
	ContentText     ContentType = "text"
)

// DetectContentType inspects the first user message. Precedence runs
// json_code > code > json > diff, lowest-confidence signal last:
//   - both code and JSON signals -> json_code
//   - code markers (triple-backtick or "def ") -> code
//   - JSON signals (starts with '{'/'[' or contains "json") -> json
//   - unified diff markers ("--- " and "+++ ") -> diff
//   - else -> text
func DetectContentType(firstUserMessage string) ContentType {
	trimmed := strings.TrimSpace(firstUserMessage)

	hasCode := strings.Contains(firstUserMessage, "```") || strings.Contains(firstUserMessage, "def ")
	hasJSON := strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") ||
		strings.Contains(strings.ToLower(firstUserMessage), "json")
	hasDiff := strings.Contains(firstUserMessage, "--- ") && strings.Contains(firstUserMessage, "+++ ")

	switch {
	case hasCode && hasJSON:
		return ContentJSONCode
	case hasCode:
		return ContentCode
	case hasJSON:
		return ContentJSON
	case hasDiff:
		return ContentDiff
	default:
		return ContentText
	}
}

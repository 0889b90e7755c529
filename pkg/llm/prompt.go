package llm

import "strings"

const (
	OverlapBeginMarker = "---BEGIN_EXACT_OVERLAP---"
	OverlapEndMarker   = "---END_EXACT_OVERLAP---"
)

// BuildContinuationPrompt produces the user message appended after the
// truncated assistant content, instructing the model to repeat the
// overlap window verbatim between explicit markers and then continue.
// Wording varies per content type, step 3.
func BuildContinuationPrompt(ct ContentType, overlap []string) string {
	overlapText := strings.Join(overlap, "\n")

	var extra string
	switch ct {
	case ContentJSON, ContentJSONCode:
		extra = "Preserve all escape sequences exactly (e.g. \\n, \\\", \\\\) — do not re-escape or un-escape anything in the repeated overlap."
	case ContentCode:
		extra = "Preserve exact indentation and whitespace in the repeated overlap; do not reformat it."
	case ContentDiff:
		extra = "Preserve the unified diff markers and line prefixes (space/+/-) exactly in the repeated overlap."
	default:
		extra = "Repeat the overlap text exactly as given, with no paraphrasing."
	}

	var b strings.Builder
	b.WriteString("Your previous response was cut off. First, repeat the following text exactly, ")
	b.WriteString("with no changes, between the markers below. Then continue the response from ")
	b.WriteString("immediately after that text.\n\n")
	b.WriteString(extra)
	b.WriteString("\n\n")
	b.WriteString(OverlapBeginMarker)
	b.WriteString("\n")
	b.WriteString(overlapText)
	b.WriteString("\n")
	b.WriteString(OverlapEndMarker)
	b.WriteString("\n\nContinue now.")
	return b.String()
}

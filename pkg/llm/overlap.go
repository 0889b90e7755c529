package llm

import "strings"

// overlapRange is the [min, max] tail-line count for one content type.
type overlapRange struct{ min, max int }

var (
	codeRange         = overlapRange{5, 15}
	codeExpandedRange = overlapRange{15, 30}
	jsonDiffRange     = overlapRange{8, 20}
	textRange         = overlapRange{3, 10}
)

// unterminatedFence reports whether accumulated ends mid multi-line
// string/fenced block: an odd number of "```" fences, an odd number of
// `"""`/`'''` triple-quotes, or an odd number of bare single/double
// quotes (which also catches an unterminated f-string, since f"..." and
// f'...' close on the same quote character) means the tail is inside one.
func unterminatedFence(accumulated string) bool {
	fences := strings.Count(accumulated, "```")
	tripleDouble := strings.Count(accumulated, `"""`)
	tripleSingle := strings.Count(accumulated, "'''")
	if fences%2 == 1 || tripleDouble%2 == 1 || tripleSingle%2 == 1 {
		return true
	}

	stripped := strings.ReplaceAll(accumulated, `"""`, "")
	stripped = strings.ReplaceAll(stripped, "'''", "")
	doubles := strings.Count(stripped, `"`)
	singles := strings.Count(stripped, "'")
	return doubles%2 == 1 || singles%2 == 1
}

// ComputeOverlapWindow returns the trailing lines of accumulated content
// to ask the model to repeat verbatim, sized:
// - code/json_code: 5-15 tail lines, expanding to 15-30 if a
// multi-line string/fenced block is incomplete at the tail.
// - json/diff: 8-20 lines.
// - text: 3-10 lines.
//
// The window scales with how much has accumulated so far (a third of the
// line count, clamped to the applicable range) rather than always sitting
// at the range minimum, so a long accumulated response gets more overlap
// context to re-anchor the join on.
func ComputeOverlapWindow(ct ContentType, accumulated string) []string {
	var r overlapRange
	switch ct {
	case ContentCode, ContentJSONCode:
		r = codeRange
		if unterminatedFence(accumulated) {
			r = codeExpandedRange
		}
	case ContentJSON, ContentDiff:
		r = jsonDiffRange
	default:
		r = textRange
	}
	lines := strings.Split(accumulated, "\n")
	want := len(lines) / 3
	if want < r.min {
		want = r.min
	}
	if want > r.max {
		want = r.max
	}
	return tailLines(accumulated, want, r.max)
}

// tailLines returns the last `want` lines of accumulated, split on "\n"
// with empty lines counted like any other. want is clamped to max; if
// accumulated has fewer lines than want, all are returned.
func tailLines(accumulated string, want, max int) []string {
	if want > max {
		want = max
	}
	lines := strings.Split(accumulated, "\n")
	if len(lines) <= want {
		return lines
	}
	return lines[len(lines)-want:]
}

package llm

import (
	"crypto/md5"
	"regexp"
	"strings"
)

// JoinStrategy names which cascade level produced the result, used for
// diagnostics counters.
type JoinStrategy string

const (
	JoinMarkerStrip  JoinStrategy = "marker_strip"
	JoinExactOverlap JoinStrategy = "exact_overlap"
	JoinHashMatch    JoinStrategy = "hash_match"
	JoinTokenMatch   JoinStrategy = "token_match"
	JoinLLMStitch    JoinStrategy = "llm_stitch"
	JoinBasic        JoinStrategy = "basic"
)

// JoinResult is the outcome of joining accumulated content with the next
// chunk received after a continuation prompt.
type JoinResult struct {
	Content  string
	Strategy JoinStrategy
}

// LLMStitchFunc issues a fresh, temperature-0 completion asking the
// model to splice two contexts together. Only invoked for
// code/json/json_code/diff content types.
type LLMStitchFunc func(left, right string) (string, error)

// Join runs the cascade described in, returning
// the first strategy that succeeds.
func Join(ct ContentType, accumulated string, overlap []string, next string, stitch LLMStitchFunc) JoinResult {
	if joined, ok := joinMarkerStrip(accumulated, next); ok {
		return JoinResult{Content: joined, Strategy: JoinMarkerStrip}
	}
	if joined, ok := joinExactOverlap(accumulated, overlap, next); ok {
		return JoinResult{Content: joined, Strategy: JoinExactOverlap}
	}
	if joined, ok := joinHashMatch(ct, accumulated, overlap, next); ok {
		return JoinResult{Content: joined, Strategy: JoinHashMatch}
	}
	if joined, ok := joinTokenMatch(accumulated, overlap, next); ok {
		return JoinResult{Content: joined, Strategy: JoinTokenMatch}
	}
	if isStitchable(ct) && stitch != nil {
		if joined, ok := joinLLMStitch(accumulated, next, stitch); ok {
			return JoinResult{Content: joined, Strategy: JoinLLMStitch}
		}
	}
	return JoinResult{Content: joinBasic(ct, accumulated, next), Strategy: JoinBasic}
}

func isStitchable(ct ContentType) bool {
	switch ct {
	case ContentCode, ContentJSON, ContentJSONCode, ContentDiff:
		return true
	default:
		return false
	}
}

// joinMarkerStrip drops everything up to and including the end marker,
// if both markers are present and well-ordered, then appends the
// remainder to accumulated.
func joinMarkerStrip(accumulated, next string) (string, bool) {
	beginIdx := strings.Index(next, OverlapBeginMarker)
	endIdx := strings.Index(next, OverlapEndMarker)
	if beginIdx < 0 || endIdx < 0 || endIdx <= beginIdx {
		return "", false
	}
	remainder := next[endIdx+len(OverlapEndMarker):]
	remainder = strings.TrimPrefix(remainder, "\n")
	return accumulated + remainder, true
}

// joinExactOverlap succeeds when the first len(overlap) lines of next
// equal the overlap window byte-for-byte.
func joinExactOverlap(accumulated string, overlap []string, next string) (string, bool) {
	if len(overlap) == 0 {
		return "", false
	}
	nextLines := strings.Split(next, "\n")
	if len(nextLines) < len(overlap) {
		return "", false
	}
	for i, line := range overlap {
		if nextLines[i] != line {
			return "", false
		}
	}
	remainder := strings.Join(nextLines[len(overlap):], "\n")
	return accumulated + remainder, true
}

func normalizeForHash(ct ContentType, s string) string {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	if ct == ContentText {
		joined = strings.ToLower(joined)
	}
	return joined
}

func hashOf(s string) [16]byte {
	return md5.Sum([]byte(s))
}

// joinHashMatch compares the MD5 of the normalized overlap against the
// MD5 of every sliding len(overlap)-line window in the first 20 lines of
// next.
func joinHashMatch(ct ContentType, accumulated string, overlap []string, next string) (string, bool) {
	if len(overlap) == 0 {
		return "", false
	}
	target := hashOf(normalizeForHash(ct, strings.Join(overlap, "\n")))

	nextLines := strings.Split(next, "\n")
	scanLimit := len(nextLines)
	if scanLimit > 20 {
		scanLimit = 20
	}

	windowSize := len(overlap)
	for start := 0; start+windowSize <= scanLimit; start++ {
		window := nextLines[start : start+windowSize]
		if hashOf(normalizeForHash(ct, strings.Join(window, "\n"))) == target {
			remainder := strings.Join(nextLines[start+windowSize:], "\n")
			return accumulated + remainder, true
		}
	}
	return "", false
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+|[^\sA-Za-z0-9_]`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(s, -1)
}

// tokenizeWithOffsets returns each token's text plus its byte-offset span
// within s, so a match's end position can be mapped back to original text
// (preserving whitespace/formatting the token list itself discards).
func tokenizeWithOffsets(s string) ([]string, [][2]int) {
	idx := tokenPattern.FindAllStringIndex(s, -1)
	toks := make([]string, len(idx))
	for i, pair := range idx {
		toks[i] = s[pair[0]:pair[1]]
	}
	return toks, idx
}

// joinTokenMatch finds the longest common subsequence (contiguous run)
// of at least five tokens between the overlap window and the head of
// next, then keeps next's content from after the match (by original byte
// offset, not by re-joining tokens).
func joinTokenMatch(accumulated string, overlap []string, next string) (string, bool) {
	overlapTokens := tokenize(strings.Join(overlap, "\n"))
	nextTokens, nextOffsets := tokenizeWithOffsets(next)
	if len(overlapTokens) < 5 || len(nextTokens) < 5 {
		return "", false
	}

	bestLen, bestNextEnd := 0, -1
	for i := 0; i < len(overlapTokens); i++ {
		for j := 0; j < len(nextTokens); j++ {
			k := 0
			for i+k < len(overlapTokens) && j+k < len(nextTokens) && overlapTokens[i+k] == nextTokens[j+k] {
				k++
			}
			if k > bestLen {
				bestLen = k
				bestNextEnd = j + k
			}
		}
	}

	if bestLen < 5 || bestNextEnd < 0 {
		return "", false
	}

	var byteOffset int
	if bestNextEnd < len(nextOffsets) {
		byteOffset = nextOffsets[bestNextEnd][0]
	} else {
		byteOffset = len(next)
	}
	return accumulated + next[byteOffset:], true
}

func joinLLMStitch(accumulated, next string, stitch LLMStitchFunc) (string, bool) {
	result, err := stitch(accumulated, next)
	if err != nil {
		return "", false
	}
	minLen := int(0.8 * float64(len(accumulated)+len(next)))
	if len(result) < minLen {
		return "", false
	}
	return result, true
}

// joinBasic trims whitespace at the seam and applies a handful of
// syntax-aware repairs: avoid double commas in JSON, avoid duplicating a
// closing bracket the left side already supplies, and preserve a newline
// after block openers ':' / '{'.
func joinBasic(ct ContentType, accumulated, next string) string {
	left := strings.TrimRight(accumulated, " \t\n")
	right := strings.TrimLeft(next, " \t\n")

	if ct == ContentJSON || ct == ContentJSONCode {
		if strings.HasSuffix(left, ",") && strings.HasPrefix(right, ",") {
			right = strings.TrimPrefix(right, ",")
			right = strings.TrimLeft(right, " \t\n")
		}
		for _, closer := range []string{"}", "]", ")"} {
			if strings.HasSuffix(strings.TrimSpace(left), closer) && strings.HasPrefix(strings.TrimSpace(right), closer) {
				right = strings.TrimPrefix(strings.TrimSpace(right), closer)
			}
		}
	}

	if strings.HasSuffix(left, ":") || strings.HasSuffix(left, "{") {
		return left + "\n" + right
	}

	return left + "\n" + right
}

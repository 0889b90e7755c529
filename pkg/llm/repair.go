package llm

import "strings"

// RepairEscapes fixes a narrow class of artefacts the join cascade can
// introduce at a seam: a literal backslash left dangling at the very end
// of the joined text (the continuation's first character would have
// completed the escape sequence but was consumed by a join strategy), and
// doubled escape sequences produced when two overlap copies of the same
// backslash-escaped character survive a basic join. It reports whether it
// changed anything so the caller can bump the structure-repair counter.
func RepairEscapes(ct ContentType, s string) (string, bool) {
	if ct != ContentJSON && ct != ContentJSONCode {
		return s, false
	}

	repaired := s
	changed := false

	doubledToSingle := map[string]string{
		`\\n`:  `\n`,
		`\\t`:  `\t`,
		`\\"`:  `\"`,
		`\\\\`: `\\`,
	}
	for doubled, single := range doubledToSingle {
		if strings.Contains(repaired, doubled) {
			repaired = strings.ReplaceAll(repaired, doubled, single)
			changed = true
		}
	}

	if strings.HasSuffix(repaired, `\`) && !strings.HasSuffix(repaired, `\\`) {
		repaired = strings.TrimSuffix(repaired, `\`)
		changed = true
	}

	return repaired, changed
}

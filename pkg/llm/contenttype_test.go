package llm

import "testing"

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ContentType
	}{
		{"fenced code", "```go\nfunc main() {}\n```", ContentCode},
		{"python def", "def solve(x):\n    return x", ContentCode},
		{"json object", `{"key": "value"}`, ContentJSON},
		{"json array", `[1, 2, 3]`, ContentJSON},
		{"mentions json", "Please return the result as json.", ContentJSON},
		{"unified diff", "--- a/file.go\n+++ b/file.go\n@@ -1 +1 @@\n-old\n+new", ContentDiff},
		{"code and json", "```json\n{\"a\": 1}\n```", ContentJSONCode},
		{"plain text", "Summarize the following paragraph for me.", ContentText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectContentType(tc.in)
			if got != tc.want {
				t.Errorf("DetectContentType(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

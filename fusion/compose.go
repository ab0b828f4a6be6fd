package fusion

import (
	"strings"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Compose stitches per-intent sections into one answer, used when
// generative synthesis is disabled or unavailable. Sentences repeated
// across sections are kept once, first occurrence wins.
func Compose(responses []schema.AgentResponse) string {
	seen := make(map[string]bool)
	var sections []string
	for _, r := range responses {
		if r.Text == "" {
			continue
		}
		var kept []string
		for _, s := range splitSentences(r.Text) {
			key := normalizeSentence(s)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, s)
		}
		if len(kept) > 0 {
			sections = append(sections, strings.Join(kept, " "))
		}
	}
	return strings.Join(sections, "\n\n")
}

func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func normalizeSentence(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".!?")
}

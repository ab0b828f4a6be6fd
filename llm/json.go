package llm

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered
// from a completion.
var ErrNoJSON = errors.New("no json object in completion")

// ExtractJSON recovers a JSON object from a model completion. Models
// wrap output in markdown fences, prepend prose, or emit comment lines;
// this strips all of that and repairs the most common malformations
// before validating.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Prefer the content of a fenced block when one exists.
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = rest[:j]
		} else {
			s = rest
		}
		s = strings.TrimSpace(s)
	}

	s = stripLineComments(s)
	if obj := firstObject(s); obj != "" {
		s = obj
	}
	if gjson.Valid(s) {
		return s, nil
	}
	repaired := repairJSON(s)
	if gjson.Valid(repaired) {
		return repaired, nil
	}
	return "", ErrNoJSON
}

// stripLineComments drops // and # comment lines that some models emit
// inside JSON output.
func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.Join(kept, "\n")
}

// firstObject returns the first balanced {...} span, respecting strings.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if esc {
				esc = false
			} else if ch == '\\' {
				esc = true
			} else if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON fixes missing opening quotes before keys, the most common
// malformation seen in structured completions (`, type":` -> `, "type":`).
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}
		fixed = append(fixed, ch)
		i++
		for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
			fixed = append(fixed, result[i])
			i++
		}
		if i >= len(result) || result[i] == '"' || !isLetter(result[i]) {
			continue
		}
		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
			fixed = append(fixed, result[keyStart:i]...)
			continue
		}
		fixed = append(fixed, result[keyStart:i]...)
	}
	return string(fixed)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

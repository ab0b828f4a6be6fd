package emergency

import (
	"regexp"
	"strings"

	"github.com/ruchit2005/Pran-Protocol/metrics"
)

// Detector is the fast-path pre-filter: a keyword set plus a handful of
// regex patterns, cheap enough to run on every request before any model
// call. False positives are acceptable; false negatives are not, so the
// lists lean broad.
type Detector struct {
	keywords []string
	patterns []*regexp.Regexp
}

var criticalKeywords = []string{
	"chest pain", "heart attack", "stroke", "suicide", "kill myself",
	"end my life", "can't breathe", "cannot breathe", "unconscious",
	"severe bleeding", "overdose", "poisoned", "seizure", "choking",
	"anaphylaxis", "not breathing",
}

var criticalPatterns = []string{
	`severe\s+pain`,
	`blood\s+in\s+(vomit|stool|urine)`,
	`call\s+(?:an\s+|the\s+)?(ambulance|911|108|102)`,
	`(crushing|tight)\s+(chest|heart)`,
	`(want|going)\s+to\s+(die|hurt\s+myself)`,
}

func NewDetector() *Detector {
	d := &Detector{keywords: criticalKeywords}
	for _, p := range criticalPatterns {
		d.patterns = append(d.patterns, regexp.MustCompile(p))
	}
	return d
}

// Detect reports whether the text triggers the emergency fast path,
// with the matched term for logging.
func (d *Detector) Detect(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			metrics.IncEmergency()
			return true, kw
		}
	}
	for _, p := range d.patterns {
		if m := p.FindString(lower); m != "" {
			metrics.IncEmergency()
			return true, m
		}
	}
	return false, ""
}

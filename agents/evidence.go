package agents

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

// countTokens measures text with the cl100k_base encoding, falling back
// to a word count when the encoding cannot be loaded (offline build).
func countTokens(text string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("agents: tiktoken unavailable, using word-count budget: %v", err)
			return
		}
		encoder = enc
	})
	if encoder == nil {
		return len(strings.Fields(text))
	}
	return len(encoder.Encode(text, nil, nil))
}

// formatEvidence renders retrieved passages as a numbered reference
// block, stopping at the token budget. Candidates arrive sorted by
// score, so truncation drops the weakest evidence first. Context chunks
// ride along with their parent passage when the budget allows.
func formatEvidence(docs []schema.SearchResult, budget int) string {
	if len(docs) == 0 {
		return ""
	}
	if budget <= 0 {
		budget = 3000
	}

	var b strings.Builder
	used := 0
	for i, d := range docs {
		passage := d.Document.Content
		for _, ctx := range d.Context {
			passage += "\n" + ctx.Content
		}
		entry := fmt.Sprintf("[%d] %s\n", i+1, passage)
		cost := countTokens(entry)
		if used+cost > budget && b.Len() > 0 {
			break
		}
		b.WriteString(entry)
		used += cost
	}
	return b.String()
}

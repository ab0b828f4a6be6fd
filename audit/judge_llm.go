package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/llm"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// LLMJudge asks the generation service whether the retrieved passages
// can answer the query.
type LLMJudge struct {
	Provider llm.Provider
}

const judgeSystemPrompt = `You decide whether retrieved medical passages can answer a user's question.
Respond with ONLY a JSON object: {"can_answer": true|false, "confidence": 0.0-1.0}.`

func (j *LLMJudge) CanAnswer(ctx context.Context, query string, candidates []schema.SearchResult) (bool, float64, error) {
	if j.Provider == nil {
		return true, 0.5, nil
	}

	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "Passage %d:\n%s\n\n", i+1, c.Document.Content)
	}
	prompt := fmt.Sprintf("%s\n\nQuestion: %s\n\n%s", judgeSystemPrompt, query, b.String())

	resp, err := j.Provider.GenerateCompletion(ctx, prompt)
	if err != nil {
		return true, 0.5, err
	}
	return parseJudgment(resp), judgmentConfidence(resp), nil
}

// parseJudgment tolerates both JSON and bare yes/no text; anything
// unparseable is a positive judgment.
func parseJudgment(resp string) bool {
	if obj, err := llm.ExtractJSON(resp); err == nil {
		v := gjson.Get(obj, "can_answer")
		if v.Exists() {
			return v.Bool()
		}
	}
	lower := strings.ToLower(resp)
	if strings.Contains(lower, "no") && !strings.Contains(lower, "yes") {
		return false
	}
	if !strings.Contains(lower, "yes") && !strings.Contains(lower, "true") {
		logger.Warnf("audit: unparseable judgment %q, accepting by default", truncateStr(resp, 80))
	}
	return true
}

func judgmentConfidence(resp string) float64 {
	if obj, err := llm.ExtractJSON(resp); err == nil {
		v := gjson.Get(obj, "confidence")
		if v.Exists() {
			c := v.Float()
			if c >= 0 && c <= 1 {
				return c
			}
		}
	}
	return 0.5
}

func truncateStr(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

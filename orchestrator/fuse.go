package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/fusion"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

const synthesizePrompt = `You combine section drafts into one coherent answer for a public-health assistant in India.
Merge the sections below into a single flowing reply. Keep every concrete fact,
helpline number, and caution exactly as written. Remove repetition. Do not add
new medical claims. Answer with the merged text only.`

// degradedText is the all-tasks-failed answer.
const degradedText = "I'm having trouble answering right now. For urgent medical concerns, call 108 for an ambulance or visit the nearest health facility."

// fuse assembles the final answer from completed tasks. One surviving
// response passes through untouched; several are merged generatively,
// with sentence-level stitching as the fallback.
func (o *Orchestrator) fuse(ctx context.Context, requestID, raw string, tasks []*task, trace *metrics.RequestTrace) *schema.FusedAnswer {
	answer := &schema.FusedAnswer{
		RequestID:          requestID,
		PerIntentResponses: make(map[string]schema.AgentResponse, len(tasks)),
	}

	var ok []schema.AgentResponse
	for _, t := range tasks {
		answer.PerIntentResponses[t.label] = t.resp
		if t.resp.Err == "" && t.resp.Text != "" {
			ok = append(ok, t.resp)
			answer.IntentsCovered = append(answer.IntentsCovered, t.label)
		} else {
			trace.TasksFailed++
		}
	}

	switch len(ok) {
	case 0:
		answer.Text = degradedText
		answer.Degraded = true
		trace.ErrorMsg = "all domain tasks failed"
		return answer
	case 1:
		answer.Text = ok[0].Text
		answer.Degraded = trace.TasksFailed > 0
		trace.Success = true
		return answer
	}

	answer.Degraded = trace.TasksFailed > 0
	answer.Text = o.synthesize(ctx, raw, ok)
	trace.Success = true
	return answer
}

// synthesize merges sections with the generation service, falling back
// to deduplicated stitching when the call fails.
func (o *Orchestrator) synthesize(ctx context.Context, raw string, responses []schema.AgentResponse) string {
	provider := o.Rewriter.LLM
	if provider == nil {
		return fusion.Compose(responses)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nQuestion: %s\n", synthesizePrompt, raw)
	for _, r := range responses {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", r.Intent, r.Text)
	}
	out, err := provider.GenerateCompletion(ctx, b.String())
	if err != nil || strings.TrimSpace(out) == "" {
		logger.Warnf("orchestrator: synthesis failed, stitching sections: %v", err)
		return fusion.Compose(responses)
	}
	return strings.TrimSpace(out)
}

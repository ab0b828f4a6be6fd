package agents

import (
	"context"
	"fmt"

	"github.com/ruchit2005/Pran-Protocol/llm"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// RAGAgent answers from retrieved evidence. The orchestrator performs
// the retrieval and hands the candidates in; the agent only grounds its
// generation on them.
type RAGAgent struct {
	intent       string
	systemPrompt string
	provider     llm.ChatProvider
	tokenBudget  int
}

func NewRAGAgent(intent, systemPrompt string, provider llm.ChatProvider, tokenBudget int) *RAGAgent {
	return &RAGAgent{intent: intent, systemPrompt: systemPrompt, provider: provider, tokenBudget: tokenBudget}
}

func (a *RAGAgent) Intent() string    { return a.intent }
func (a *RAGAgent) StoreBacked() bool { return true }

func (a *RAGAgent) Run(ctx context.Context, query string, docs []schema.SearchResult) (string, error) {
	if a.provider == nil {
		return "", fmt.Errorf("agent %s: no generation provider", a.intent)
	}
	user := query
	if evidence := formatEvidence(docs, a.tokenBudget); evidence != "" {
		user = "Reference passages:\n" + evidence + "\nQuestion: " + query
	} else {
		user = "No reference passages were found for this question.\nQuestion: " + query
	}
	return a.provider.GenerateChat(ctx, a.systemPrompt, user)
}

// ChatAgent answers without retrieval, from its system prompt alone.
type ChatAgent struct {
	intent       string
	systemPrompt string
	provider     llm.ChatProvider
}

func NewChatAgent(intent, systemPrompt string, provider llm.ChatProvider) *ChatAgent {
	return &ChatAgent{intent: intent, systemPrompt: systemPrompt, provider: provider}
}

func (a *ChatAgent) Intent() string    { return a.intent }
func (a *ChatAgent) StoreBacked() bool { return false }

func (a *ChatAgent) Run(ctx context.Context, query string, _ []schema.SearchResult) (string, error) {
	if a.provider == nil {
		return "", fmt.Errorf("agent %s: no generation provider", a.intent)
	}
	return a.provider.GenerateChat(ctx, a.systemPrompt, query)
}

// EmergencyAgent returns the fixed escalation message. It never calls a
// model: the fast path must not depend on any upstream service.
type EmergencyAgent struct{}

func (EmergencyAgent) Intent() string    { return "emergency" }
func (EmergencyAgent) StoreBacked() bool { return false }

func (EmergencyAgent) Run(context.Context, string, []schema.SearchResult) (string, error) {
	return emergencyText, nil
}

// EmergencyMessage exposes the escalation text for the fast path, which
// bypasses dispatch entirely.
func EmergencyMessage() string { return emergencyText }

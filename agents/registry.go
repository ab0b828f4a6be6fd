package agents

import (
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/intent"
	"github.com/ruchit2005/Pran-Protocol/llm"
)

// builtinPrompts are the defaults used when a domain omits its own
// system prompt.
var builtinPrompts = map[string]string{
	intent.LabelSymptomTriage:    symptomTriagePrompt,
	intent.LabelWellnessSupport:  wellnessSupportPrompt,
	intent.LabelAdvisory:         advisoryPrompt,
	intent.LabelSchemeAssistance: schemeAssistancePrompt,
	intent.LabelFacilityLookup:   facilityLookupPrompt,
	intent.LabelCalculation:      calculationPrompt,
	intent.LabelSmallTalk:        smallTalkPrompt,
}

// BuildRegistry wires one generator per routable label. Domains with a
// collection ground on retrieved passages; the rest generate from their
// prompts alone. Labels absent from the config still get a generator so
// routing never dead-ends.
func BuildRegistry(cfg *config.Config, provider llm.ChatProvider, tokenBudget int) *Registry {
	gens := []Generator{EmergencyAgent{}}
	configured := make(map[string]bool)

	for _, d := range cfg.Domains {
		prompt := d.SystemPrompt
		if prompt == "" {
			prompt = builtinPrompts[d.Intent]
		}
		if d.Collection != "" {
			gens = append(gens, NewRAGAgent(d.Intent, prompt, provider, tokenBudget))
		} else {
			gens = append(gens, NewChatAgent(d.Intent, prompt, provider))
		}
		configured[d.Intent] = true
	}

	for _, label := range intent.Labels {
		if configured[label] {
			continue
		}
		gens = append(gens, NewChatAgent(label, builtinPrompts[label], provider))
	}
	return NewRegistry(gens...)
}

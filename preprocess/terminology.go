package preprocess

import (
	"sort"
	"strings"
)

// terminologyMap expands common symptom phrasing with the classical
// Ayurvedic terms the indexed corpus uses, so lexical and semantic
// retrieval both land on the right passages. Substitution is additive:
// the original phrase is kept and the mapped terms are appended.
var terminologyMap = map[string][]string{
	"stomach ache":  {"Atisara", "Grahani"},
	"stomach pain":  {"Atisara", "Grahani", "Shoola"},
	"fever":         {"Jwara", "pyrexia"},
	"diabetes":      {"Prameha", "Madhumeha"},
	"headache":      {"Shirahshoola"},
	"cough":         {"Kasa"},
	"cold":          {"Pratishyaya"},
	"constipation":  {"Vibandha"},
	"diarrhea":      {"Atisara"},
	"asthma":        {"Tamaka Shwasa"},
	"arthritis":     {"Sandhivata", "Amavata"},
	"joint pain":    {"Sandhivata"},
	"skin disease":  {"Kushtha"},
	"anemia":        {"Pandu"},
	"obesity":       {"Sthaulya", "Medoroga"},
	"insomnia":      {"Anidra"},
	"indigestion":   {"Ajirna", "Agnimandya"},
	"acidity":       {"Amlapitta"},
	"piles":         {"Arsha"},
	"jaundice":      {"Kamala"},
	"anxiety":       {"Chittodvega"},
	"hypertension":  {"Rakta Gata Vata"},
	"stress":        {"Manasika Roga"},
}

// domainTermPatterns are markers of already-precise medical phrasing.
// Three or more hits suppress generative rewriting.
var domainTermPatterns = []string{
	"dosha", "vata", "pitta", "kapha", "agni", "ama", "rasayana",
	"panchakarma", "churna", "kashaya", "taila", "ghrita", "asana",
	"pranayama", "symptom", "diagnosis", "treatment", "therapy",
	"dosage", "contraindication", "formulation", "herb", "decoction",
	"chronic", "acute", "etiology", "pathogenesis", "prognosis",
}

// expansionPhrases is the map's key set in sorted order, so expansion
// output is stable across runs (it keys cache entries downstream).
var expansionPhrases = func() []string {
	phrases := make([]string, 0, len(terminologyMap))
	for p := range terminologyMap {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	return phrases
}()

// ExpandTerminology appends mapped domain terms for every phrase found
// in the query. Expansion preserves order and never repeats a term.
func ExpandTerminology(query string) string {
	lower := strings.ToLower(query)
	seen := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		seen[w] = true
	}

	var added []string
	for _, phrase := range expansionPhrases {
		terms := terminologyMap[phrase]
		if !strings.Contains(lower, phrase) {
			continue
		}
		for _, t := range terms {
			key := strings.ToLower(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			added = append(added, t)
		}
	}
	if len(added) == 0 {
		return query
	}
	return query + " " + strings.Join(added, " ")
}

// CountDomainTerms counts domain-term pattern hits in the text. Mapped
// Ayurvedic terms count as well as the generic patterns.
func CountDomainTerms(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, p := range domainTermPatterns {
		if strings.Contains(lower, p) {
			n++
		}
	}
	for _, terms := range terminologyMap {
		for _, t := range terms {
			if strings.Contains(lower, strings.ToLower(t)) {
				n++
			}
		}
	}
	return n
}

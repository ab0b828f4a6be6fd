package intent

import (
	"sort"
	"strings"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// RuleClassifier is the keyword fallback used when the generation
// service is unreachable. Confidences are deliberately modest: rules
// recognize a domain but cannot weigh competing ones.
type RuleClassifier struct {
	tables map[string][]string
}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{tables: map[string][]string{
		LabelSchemeAssistance: {
			"scheme", "ayushman", "insurance", "card", "benefit", "subsidy",
			"pmjay", "government", "yojana", "eligib",
		},
		LabelWellnessSupport: {
			"stress", "anxiety", "anxious", "depress", "sleep", "insomnia",
			"meditation", "yoga", "lonely", "sad", "overwhelm", "mental",
		},
		LabelSymptomTriage: {
			"pain", "ache", "fever", "cough", "symptom", "rash", "nausea",
			"vomit", "dizzy", "swelling", "infection", "diarrhea", "headache",
			"remedy", "treatment", "medicine",
		},
		LabelFacilityLookup: {
			"hospital", "clinic", "doctor near", "pharmacy", "nearby",
			"nearest", "facility", "where can i",
		},
		LabelCalculation: {
			"dose", "dosage", "how much", "bmi", "calculate", "convert", "mg",
		},
		LabelAdvisory: {
			"prevent", "diet", "nutrition", "exercise", "healthy", "hygiene",
			"vaccin", "immuni",
		},
	}}
}

// Classify scores each domain by keyword hits. A query with no hits is
// small-talk.
func (r *RuleClassifier) Classify(query string) *schema.IntentClassification {
	lower := strings.ToLower(query)

	cls := &schema.IntentClassification{IsSafe: true}
	for label, keywords := range r.tables {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		conf := 0.6 + 0.1*float64(hits-1)
		if conf > 0.9 {
			conf = 0.9
		}
		cls.All = append(cls.All, schema.IntentScore{Label: label, Confidence: conf})
	}

	if len(cls.All) == 0 {
		cls.Primary = LabelSmallTalk
		cls.All = []schema.IntentScore{{Label: LabelSmallTalk, Confidence: 0.7}}
		return cls
	}
	sort.SliceStable(cls.All, func(i, j int) bool { return cls.All[i].Confidence > cls.All[j].Confidence })
	cls.Primary = cls.All[0].Label
	return cls
}

package emergency

import "testing"

func TestDetector(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		query string
		want  bool
	}{
		{"I have crushing chest pain right now", true},
		{"my father had a stroke", true},
		{"I want to kill myself", true},
		{"severe pain in my abdomen since morning", true},
		{"there is blood in vomit", true},
		{"should I call an ambulance for him", true},
		{"what is a good remedy for mild fever", false},
		{"how do I apply for ayushman card", false},
		{"I feel a bit tired lately", false},
	}
	for _, tc := range cases {
		got, term := d.Detect(tc.query)
		if got != tc.want {
			t.Errorf("Detect(%q) = %v (matched %q), want %v", tc.query, got, term, tc.want)
		}
	}
}

func TestDetector_CaseInsensitive(t *testing.T) {
	d := NewDetector()
	if ok, _ := d.Detect("HEART ATTACK symptoms"); !ok {
		t.Fatal("detection must be case-insensitive")
	}
}

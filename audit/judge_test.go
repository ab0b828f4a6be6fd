package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

type scriptedLLM struct {
	out string
	err error
}

func (s *scriptedLLM) GenerateCompletion(context.Context, string) (string, error) {
	return s.out, s.err
}
func (s *scriptedLLM) GetProviderType() string { return "fake" }

func TestLLMJudge_ParsesJSON(t *testing.T) {
	j := &LLMJudge{Provider: &scriptedLLM{out: `{"can_answer": false, "confidence": 0.85}`}}
	ok, conf, err := j.CanAnswer(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if ok || conf != 0.85 {
		t.Fatalf("unexpected judgment: ok=%v conf=%v", ok, conf)
	}
}

func TestLLMJudge_FencedOutput(t *testing.T) {
	j := &LLMJudge{Provider: &scriptedLLM{out: "```json\n{\"can_answer\": true, \"confidence\": 0.7}\n```"}}
	ok, conf, _ := j.CanAnswer(context.Background(), "q", nil)
	if !ok || conf != 0.7 {
		t.Fatalf("fenced judgment mishandled: ok=%v conf=%v", ok, conf)
	}
}

func TestLLMJudge_UnparseableFailsOpen(t *testing.T) {
	j := &LLMJudge{Provider: &scriptedLLM{out: "I think so, probably."}}
	ok, _, _ := j.CanAnswer(context.Background(), "q", nil)
	if !ok {
		t.Fatal("unparseable judgment must fail open")
	}
}

func TestLLMJudge_TextualNo(t *testing.T) {
	j := &LLMJudge{Provider: &scriptedLLM{out: "no, these passages do not cover the question"}}
	ok, _, _ := j.CanAnswer(context.Background(), "q", nil)
	if ok {
		t.Fatal("a plain textual no must be honored")
	}
}

func TestHTTPJudge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query    string   `json:"query"`
			Passages []string `json:"passages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]any{"can_answer": len(req.Passages) > 0, "confidence": 0.9}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	j := &HTTPJudge{Endpoint: srv.URL}
	ok, conf, err := j.CanAnswer(context.Background(), "q", []schema.SearchResult{cand("a", 0.8, "s1")})
	if err != nil || !ok || conf != 0.9 {
		t.Fatalf("unexpected: ok=%v conf=%v err=%v", ok, conf, err)
	}

	ok, _, err = j.CanAnswer(context.Background(), "q", nil)
	if err != nil || ok {
		t.Fatalf("empty passages should judge negative: ok=%v err=%v", ok, err)
	}
}

func TestHTTPJudge_UnreachableFailsOpen(t *testing.T) {
	j := &HTTPJudge{Endpoint: "http://127.0.0.1:1/judge"}
	ok, conf, err := j.CanAnswer(context.Background(), "q", nil)
	if !ok || conf != 0.5 || err == nil {
		t.Fatalf("unreachable judge must fail open with its error: ok=%v conf=%v err=%v", ok, conf, err)
	}
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ruchit2005/Pran-Protocol/common/httpx"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// HTTPJudge calls an external judgment service.
// Request:  {"query":"...","passages":["..."]}
// Response: {"can_answer":true,"confidence":0.8}
type HTTPJudge struct {
	Endpoint string
	Client   *httpx.Client
}

type judgeRequest struct {
	Query    string   `json:"query"`
	Passages []string `json:"passages"`
}

type judgeResponse struct {
	CanAnswer  bool    `json:"can_answer"`
	Confidence float64 `json:"confidence"`
}

func (j *HTTPJudge) CanAnswer(ctx context.Context, query string, candidates []schema.SearchResult) (bool, float64, error) {
	if j.Endpoint == "" {
		return true, 0.5, nil
	}
	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Document.Content
	}
	bs, _ := json.Marshal(judgeRequest{Query: query, Passages: passages})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.Endpoint, bytes.NewReader(bs))
	if err != nil {
		return true, 0.5, err
	}
	req.Header.Set("Content-Type", "application/json")
	if j.Client == nil {
		j.Client = httpx.NewFromConfig(nil)
	}
	resp, err := j.Client.Do(req)
	if err != nil {
		return true, 0.5, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return true, 0.5, fmt.Errorf("judgment service status %d", resp.StatusCode)
	}
	var jr judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return true, 0.5, err
	}
	conf := jr.Confidence
	if conf <= 0 || conf > 1 {
		conf = 0.5
	}
	return jr.CanAnswer, conf, nil
}

package main

import (
    "encoding/json"
    "log"
    "net/http"
    "os"
    "sort"
    "strings"
)

type rerankReq struct { Query string `json:"query"`; Documents []string `json:"documents"`; TopN int `json:"top_n"` }
type outItem struct { Index int `json:"index"`; RelevanceScore float64 `json:"relevance_score"` }
type rerankResp struct { Results []outItem `json:"results"` }

func handleRerank(w http.ResponseWriter, r *http.Request) {
    var req rerankReq
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil { http.Error(w, err.Error(), 400); return }
    // simple logic: shared-word count with the query as the score
    qWords := strings.Fields(strings.ToLower(req.Query))
    out := rerankResp{}
    for i, d := range req.Documents {
        lower := strings.ToLower(d)
        score := 0.0
        for _, wd := range qWords {
            if strings.Contains(lower, wd) { score++ }
        }
        out.Results = append(out.Results, outItem{Index: i, RelevanceScore: score})
    }
    sort.SliceStable(out.Results, func(i, j int) bool { return out.Results[i].RelevanceScore > out.Results[j].RelevanceScore })
    if req.TopN > 0 && len(out.Results) > req.TopN { out.Results = out.Results[:req.TopN] }
    _ = json.NewEncoder(w).Encode(out)
}

func main() {
    addr := ":8082"
    if v := os.Getenv("RERANK_ADDR"); v != "" { addr = v }
    http.HandleFunc("/rerank", handleRerank)
    log.Printf("Reranker mock listening on %s", addr)
    log.Fatal(http.ListenAndServe(addr, nil))
}

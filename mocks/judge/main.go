package main

import (
    "encoding/json"
    "log"
    "net/http"
    "os"
)

type judgeReq struct { Query string `json:"query"`; Passages []string `json:"passages"` }
type judgeResp struct { CanAnswer bool `json:"can_answer"`; Confidence float64 `json:"confidence"` }

func handleJudge(w http.ResponseWriter, r *http.Request) {
    var req judgeReq
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil { http.Error(w, err.Error(), 400); return }
    resp := judgeResp{CanAnswer: true, Confidence: 0.9}
    if len(req.Passages) == 0 { resp = judgeResp{CanAnswer: false, Confidence: 0.8} }
    _ = json.NewEncoder(w).Encode(resp)
}

func main() {
    addr := ":8081"
    if v := os.Getenv("JUDGE_ADDR"); v != "" { addr = v }
    http.HandleFunc("/judge", handleJudge)
    log.Printf("Judge mock listening on %s", addr)
    log.Fatal(http.ListenAndServe(addr, nil))
}

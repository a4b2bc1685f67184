// A stand-in for an external intent classification service. It speaks the
// HTTP classifier contract with keyword heuristics, for local development
// and integration testing of the "http" classifier backend.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type classifyReq struct {
	Question      string `json:"question"`
	ThreadContext string `json:"thread_context,omitempty"`
}

type entities struct {
	Customer  string `json:"customer"`
	ErrorCode string `json:"error_code"`
	Feature   string `json:"feature"`
	Urgency   string `json:"urgency"`
}

type classifyResp struct {
	Intent              string   `json:"intent"`
	Confidence          float64  `json:"confidence"`
	Reason              string   `json:"reason"`
	IsAmbiguous         bool     `json:"is_ambiguous"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
	Entities            entities `json:"entities"`
}

var customers = []string{"takeda", "novartis", "almirall"}

func classify(question string) classifyResp {
	q := strings.ToLower(question)
	resp := classifyResp{
		Intent:              "question",
		Confidence:          0.7,
		Reason:              "no strong signal, defaulting to question",
		ClarifyingQuestions: []string{},
		Entities:            entities{Urgency: "low"},
	}

	for _, cust := range customers {
		if strings.Contains(q, cust) {
			resp.Entities.Customer = strings.ToUpper(cust[:1]) + cust[1:]
			break
		}
	}
	if strings.Contains(q, "urgent") || strings.Contains(q, "asap") {
		resp.Entities.Urgency = "high"
	}

	switch {
	case q == "hi" || q == "hello" || strings.HasPrefix(q, "good morning"):
		resp.Intent = "greeting"
		resp.Confidence = 0.99
		resp.Reason = "greeting phrase"
	case strings.Contains(q, "sync") && (strings.Contains(q, "fail") || strings.Contains(q, "error") || strings.Contains(q, "stuck")):
		resp.Intent = "sync_issue"
		resp.Confidence = 0.9
		resp.Reason = "sync failure wording"
	case strings.Contains(q, "broken") || strings.Contains(q, "crash") || strings.Contains(q, "500"):
		resp.Intent = "bug"
		resp.Confidence = 0.85
		resp.Reason = "breakage wording"
	case strings.Contains(q, "would be nice") || strings.Contains(q, "feature request") || strings.Contains(q, "can you add"):
		resp.Intent = "enhancement"
		resp.Confidence = 0.85
		resp.Reason = "product wish wording"
	case len(strings.Fields(q)) < 4 && resp.Entities.Customer == "":
		resp.Intent = "unclear"
		resp.Confidence = 0.3
		resp.Reason = "too short to classify"
		resp.IsAmbiguous = true
		resp.ClarifyingQuestions = []string{
			"Which builder or feature are you asking about?",
			"What exactly happened, and what did you expect?",
		}
	}
	return resp
}

func handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(classify(req.Question))
}

func main() {
	addr := ":8082"
	if v := os.Getenv("CLASSIFIER_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/classify", handleClassify)
	log.Printf("Classifier mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

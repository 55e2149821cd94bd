package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/supportrag-go/internal/assistant"
)

// counterValue returns the value of the counter series name{label=value},
// or -1 if absent.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func Test_Metrics_EndpointServesRegistry(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t, nil, nil)

	// One request so the HTTP series exist.
	do(t, s.Handler(), http.MethodGet, "/api/health", "", nil)

	w := do(t, s.Handler(), http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "supportrag_http_requests_total") {
		t.Error("supportrag_http_requests_total missing from /metrics output")
	}
}

func Test_Metrics_ChatOutcomes(t *testing.T) {
	t.Parallel()

	fa := &fakeAnswerer{answer: &assistant.Answer{
		Answer:  "Svar",
		Sources: []assistant.Source{{ID: "1", Title: "FAQ"}},
	}}
	s, reg := newTestServer(t, fa, nil)

	do(t, s.Handler(), http.MethodPost, "/api/chat", `{"question":"Hur returnerar jag?"}`, nil)
	fa.answer = &assistant.Answer{Answer: "Hej!", Sources: []assistant.Source{}, Smalltalk: true}
	do(t, s.Handler(), http.MethodPost, "/api/chat", `{"question":"hej"}`, nil)
	// A retrieval answer over an empty store has no sources but is not small talk.
	fa.answer = &assistant.Answer{Answer: "Jag är inte säker.", Sources: []assistant.Source{}}
	do(t, s.Handler(), http.MethodPost, "/api/chat", `{"question":"Vad gäller för presentkort?"}`, nil)

	if got := counterValue(t, reg, "supportrag_chat_requests_total", "outcome", outcomeOK); got != 2 {
		t.Errorf("ok outcome: want 2, got %v", got)
	}
	if got := counterValue(t, reg, "supportrag_chat_requests_total", "outcome", outcomeSmalltalk); got != 1 {
		t.Errorf("smalltalk outcome: want 1, got %v", got)
	}
}

func Test_Metrics_RoutePatternLabel(t *testing.T) {
	t.Parallel()
	s, reg := newTestServer(t, nil, &Config{Sessions: newMemSessions()})

	do(t, s.Handler(), http.MethodGet, "/api/sessions/abc", "", nil)
	do(t, s.Handler(), http.MethodGet, "/api/sessions/def", "", nil)

	if got := counterValue(t, reg, "supportrag_http_requests_total", labelHandler, "/api/sessions/{id}"); got != 2 {
		t.Errorf("want both session lookups under the route pattern, got %v", got)
	}
}

func Test_Metrics_InFlightGauge(t *testing.T) {
	t.Parallel()
	s, reg := newTestServer(t, nil, nil)

	s.metrics.chatInFlight.Inc()
	s.metrics.chatInFlight.Inc()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "supportrag_chat_in_flight" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 2 {
				t.Errorf("want in_flight=2, got %v", v)
			}
			return
		}
	}
	t.Error("supportrag_chat_in_flight not found in gathered metrics")
}

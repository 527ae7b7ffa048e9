package threshold

import (
	"strings"
	"testing"
	"time"

	"github.com/reputationlabs/repstress/internal/metrics"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Threshold
	}{
		{"latency:p90 < 0.5", Threshold{Metric: "latency", Aggregate: "p90", Operator: "<", Value: 0.5}},
		{"errors:rate<=5", Threshold{Metric: "errors", Aggregate: "rate", Operator: "<=", Value: 5}},
		{"errors:count == 0", Threshold{Metric: "errors", Aggregate: "count", Operator: "==", Value: 0}},
		{"requests:count >= 100", Threshold{Metric: "requests", Aggregate: "count", Operator: ">=", Value: 100}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if got.Metric != tc.want.Metric || got.Aggregate != tc.want.Aggregate ||
			got.Operator != tc.want.Operator || got.Value != tc.want.Value {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"nonsense",
		"bogus:p90 < 0.5",
		"latency:p42 < 0.5",
		"latency:p90 ! 0.5",
		"latency:p90 < abc",
	}
	for _, in := range cases {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestParseMultipleAggregatesErrors(t *testing.T) {
	_, err := ParseMultiple([]string{"latency:p90 < 0.5", "bad", "also:bad < 1"})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") || !strings.Contains(err.Error(), "threshold[2]") {
		t.Fatalf("error should name both failing entries: %v", err)
	}
}

func testStats() metrics.Stats {
	c := metrics.NewCollector()
	c.RecordSuccess("a.com", 100*time.Millisecond)
	c.RecordSuccess("b.com", 300*time.Millisecond)
	c.RecordError("c.com", "HTTP 500")
	return c.Snapshot(4, time.Second) // error rate 25%
}

func TestEvaluate(t *testing.T) {
	thresholds, err := ParseMultiple([]string{
		"latency:avg < 0.25",   // avg is 0.2s -> pass
		"latency:max <= 0.3",   // max is 0.3s -> pass (epsilon)
		"errors:rate < 5",      // rate is 25 -> fail
		"errors:count == 1",    // pass
		"requests:count >= 10", // completed is 3 -> fail
	})
	if err != nil {
		t.Fatal(err)
	}

	results := NewEvaluator(thresholds).Evaluate(testStats())
	if len(results) != 5 {
		t.Fatalf("got %d results", len(results))
	}

	wantPass := []bool{true, true, false, true, false}
	for i, r := range results {
		if r.Pass != wantPass[i] {
			t.Errorf("%s: pass = %v, want %v (actual %v)", r.Threshold.Raw, r.Pass, wantPass[i], r.Actual)
		}
	}
	if AllPassed(results) {
		t.Error("AllPassed should be false")
	}
}

func TestEvaluateAllPass(t *testing.T) {
	thresholds, _ := ParseMultiple([]string{"errors:count <= 1", "latency:p90 < 10"})
	results := NewEvaluator(thresholds).Evaluate(testStats())
	if !AllPassed(results) {
		for _, r := range results {
			t.Log(r.Message)
		}
		t.Fatal("expected all thresholds to pass")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if got := NewEvaluator(nil).Evaluate(testStats()); got != nil {
		t.Fatalf("expected nil results, got %v", got)
	}
}

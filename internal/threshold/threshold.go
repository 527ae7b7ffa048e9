// Package threshold evaluates pass/fail assertions against a finished run's
// statistics, so CI pipelines can gate on latency or error budgets.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/reputationlabs/repstress/internal/metrics"
)

// Threshold is one assertion over the run statistics.
type Threshold struct {
	Metric    string  // "latency", "errors" or "requests"
	Aggregate string  // "avg", "max", "p50", "p90", "p99", "rate", "count"
	Operator  string  // "<", "<=", ">", ">=", "=="
	Value     float64
	Raw       string // original string for display
}

// Result is the outcome of evaluating one threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator checks a set of thresholds against run statistics.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every threshold and returns one result per threshold.
func (e *Evaluator) Evaluate(stats metrics.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, stats))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, stats metrics.Stats) Result {
	actual, err := extractValue(t, stats)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compare(actual, t.Operator, t.Value)
	status := "PASS"
	if !pass {
		status = "FAIL"
	}

	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.4f %s %.4f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

// Parse parses one threshold string. Supported forms:
//   - "latency:avg < 0.2"    (seconds)
//   - "latency:p90 < 0.5"    (seconds; also p50, p99, max)
//   - "errors:rate < 5"      (error percentage, same scale as the report)
//   - "errors:count == 0"
//   - "requests:count >= 100" (completed requests)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	pattern := regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)
	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format %q (expected metric:aggregate operator value, e.g. 'latency:p90 < 0.5')", s)
	}

	value, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", matches[4], err)
	}

	t := Threshold{
		Metric:    matches[1],
		Aggregate: matches[2],
		Operator:  matches[3],
		Value:     value,
		Raw:       s,
	}

	if !validMetrics[t.Metric] {
		return Threshold{}, fmt.Errorf("unsupported metric %q (supported: latency, errors, requests)", t.Metric)
	}
	if !validAggregates[t.Aggregate] {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q (supported: avg, max, p50, p90, p99, rate, count)", t.Aggregate)
	}
	if !validOperators[t.Operator] {
		return Threshold{}, fmt.Errorf("unsupported operator %q (supported: <, <=, >, >=, ==)", t.Operator)
	}

	return t, nil
}

// ParseMultiple parses a list of threshold strings, aggregating all errors.
func ParseMultiple(specs []string) ([]Threshold, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(specs))
	var errs []string
	for i, s := range specs {
		t, err := Parse(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errs, "; "))
	}
	return result, nil
}

var validMetrics = map[string]bool{
	"latency":  true,
	"errors":   true,
	"requests": true,
}

var validAggregates = map[string]bool{
	"avg":   true,
	"max":   true,
	"p50":   true,
	"p90":   true,
	"p99":   true,
	"rate":  true,
	"count": true,
}

var validOperators = map[string]bool{
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
	"==": true,
}

func extractValue(t Threshold, stats metrics.Stats) (float64, error) {
	switch t.Metric {
	case "latency":
		return extractLatency(t.Aggregate, stats)
	case "errors":
		switch t.Aggregate {
		case "count":
			return float64(stats.Errors), nil
		case "rate":
			return stats.ErrorRate, nil
		default:
			return 0, fmt.Errorf("unsupported aggregate %q for errors (use count or rate)", t.Aggregate)
		}
	case "requests":
		if t.Aggregate != "count" {
			return 0, fmt.Errorf("unsupported aggregate %q for requests (use count)", t.Aggregate)
		}
		return float64(stats.Completed), nil
	default:
		return 0, fmt.Errorf("unknown metric %q", t.Metric)
	}
}

func extractLatency(aggregate string, stats metrics.Stats) (float64, error) {
	switch aggregate {
	case "avg":
		return stats.AvgLatencySec, nil
	case "max":
		return stats.MaxLatencySec, nil
	case "p50":
		return stats.P50Latency.Seconds(), nil
	case "p90":
		return stats.P90LatencySec, nil
	case "p99":
		return stats.P99Latency.Seconds(), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for latency", aggregate)
	}
}

func compare(actual float64, operator string, expected float64) bool {
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}

package metrics

import (
	"fmt"
	"sort"
	"time"
)

// Thresholds defines advisory pass/fail criteria checked against a
// Report after a run completes. These never drive the process exit
// code — Check is purely a post-run report annotation, keyed by the
// same operation name passed to ActorContext.Timer.
type Thresholds map[string]OperationThreshold

// OperationThreshold bounds one named timer's latency distribution.
// Zero fields are treated as "no bound configured" and skipped.
type OperationThreshold struct {
	P50 time.Duration `yaml:"p50,omitempty"`
	P90 time.Duration `yaml:"p90,omitempty"`
	P95 time.Duration `yaml:"p95,omitempty"`
	P99 time.Duration `yaml:"p99,omitempty"`
}

// Result represents the outcome of a single threshold check.
type Result struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
}

// ThresholdResults contains every check performed for one Report.
type ThresholdResults struct {
	Passed  bool     `json:"passed"`
	Results []Result `json:"results"`
}

// Check evaluates every configured threshold against rep. A timer
// named in Thresholds but absent from rep is skipped (the operation
// simply never ran) rather than treated as a failure.
func (t Thresholds) Check(rep *Report) *ThresholdResults {
	results := &ThresholdResults{Passed: true}
	for _, name := range sortedThresholdKeys(t) {
		bound := t[name]
		stats, ok := rep.Timers[name]
		if !ok {
			continue
		}
		checks := []struct {
			label string
			want  time.Duration
			got   time.Duration
		}{
			{"p50", bound.P50, stats.P50},
			{"p90", bound.P90, stats.P90},
			{"p95", bound.P95, stats.P95},
			{"p99", bound.P99, stats.P99},
		}
		for _, check := range checks {
			if check.want == 0 {
				continue
			}
			passed := check.got < check.want
			if !passed {
				results.Passed = false
			}
			results.Results = append(results.Results, Result{
				Name:      fmt.Sprintf("%s.%s", name, check.label),
				Passed:    passed,
				Threshold: FormatDuration(check.want),
				Actual:    FormatDuration(check.got),
			})
		}
	}
	return results
}

// Violations returns only the failed checks.
func (r *ThresholdResults) Violations() []Result {
	violations := make([]Result, 0)
	for _, result := range r.Results {
		if !result.Passed {
			violations = append(violations, result)
		}
	}
	return violations
}

func sortedThresholdKeys(t Thresholds) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

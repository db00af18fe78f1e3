package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// WriteText writes a Report in human-readable, section-header format.
func WriteText(w io.Writer, rep *Report, thresholds *ThresholdResults) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Workload Results")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Duration: %v\n", rep.TestDuration.Round(time.Millisecond))

	if len(rep.Timers) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Operations:")
		for _, name := range sortedKeys(rep.Timers) {
			s := rep.Timers[name]
			fmt.Fprintf(w, "  %-30s n=%-8d avg=%-9s p50=%-9s p95=%-9s p99=%-9s max=%s\n",
				name, s.Count, FormatDuration(s.Avg), FormatDuration(s.P50),
				FormatDuration(s.P95), FormatDuration(s.P99), FormatDuration(s.Max))
		}
	}

	if len(rep.Counters) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Counters:")
		for _, name := range sortedCounterKeys(rep.Counters) {
			fmt.Fprintf(w, "  %-30s %d\n", name, rep.Counters[name])
		}
	}

	if len(rep.Gauges) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Gauges:")
		for _, name := range sortedGaugeKeys(rep.Gauges) {
			fmt.Fprintf(w, "  %-30s %.2f\n", name, rep.Gauges[name])
		}
	}

	if thresholds != nil && len(thresholds.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Thresholds:")
		for _, result := range thresholds.Results {
			symbol := "PASS"
			if !result.Passed {
				symbol = "FAIL"
			}
			fmt.Fprintf(w, "  [%s] %s < %s (actual: %s)\n",
				symbol, result.Name, result.Threshold, result.Actual)
		}
	}
}

// WriteJSON writes a Report as JSON.
func WriteJSON(w io.Writer, rep *Report, thresholds *ThresholdResults) error {
	output := struct {
		Duration   string                     `json:"duration"`
		Timers     map[string]jsonDurationStat `json:"timers"`
		Counters   map[string]int64           `json:"counters"`
		Gauges     map[string]float64         `json:"gauges"`
		Thresholds *ThresholdResults          `json:"thresholds,omitempty"`
	}{
		Duration:   rep.TestDuration.Round(time.Millisecond).String(),
		Timers:     make(map[string]jsonDurationStat, len(rep.Timers)),
		Counters:   rep.Counters,
		Gauges:     rep.Gauges,
		Thresholds: thresholds,
	}
	for name, s := range rep.Timers {
		output.Timers[name] = jsonDurationStat{
			Count: s.Count,
			Min:   FormatDuration(s.Min),
			Max:   FormatDuration(s.Max),
			Avg:   FormatDuration(s.Avg),
			P50:   FormatDuration(s.P50),
			P90:   FormatDuration(s.P90),
			P95:   FormatDuration(s.P95),
			P99:   FormatDuration(s.P99),
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// WriteCSV writes one row per named timer, then one row per counter
// (name and count columns only); gauges are not written. This is cmd/workload's
// default report format (--metrics-format defaults to "csv").
func WriteCSV(w io.Writer, rep *Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"name", "count", "min", "avg", "p50", "p90", "p95", "p99", "max"}); err != nil {
		return err
	}
	for _, name := range sortedKeys(rep.Timers) {
		s := rep.Timers[name]
		row := []string{
			name,
			fmt.Sprintf("%d", s.Count),
			s.Min.String(),
			s.Avg.String(),
			s.P50.String(),
			s.P90.String(),
			s.P95.String(),
			s.P99.String(),
			s.Max.String(),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	for _, name := range sortedCounterKeys(rep.Counters) {
		if err := writer.Write([]string{name, fmt.Sprintf("%d", rep.Counters[name]), "", "", "", "", "", "", ""}); err != nil {
			return err
		}
	}
	return writer.Error()
}

type jsonDurationStat struct {
	Count int    `json:"count"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	Avg   string `json:"avg"`
	P50   string `json:"p50"`
	P90   string `json:"p90"`
	P95   string `json:"p95"`
	P99   string `json:"p99"`
}

func sortedKeys(m map[string]DurationStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCounterKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGaugeKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatDuration formats a duration for display using a unit sized to
// its magnitude, so threshold bounds stay easy to eyeball.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

package harness

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Report aggregates stage results across all fixture issues.
type Report struct {
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Failed reports whether any stage of any issue failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return true
		}
	}
	return false
}

// Counts returns the number of passed and failed stage results.
func (r *Report) Counts() (passed, failed int) {
	for _, res := range r.Results {
		if res.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Render writes the report as an aligned table followed by a summary line.
func (r *Report) Render(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ISSUE\tSCENARIO\tSTAGE\tRESULT\tDETAIL")
	for _, res := range r.Results {
		issue := "-"
		if res.Issue > 0 {
			issue = fmt.Sprintf("#%d", res.Issue)
		}
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", issue, res.Scenario, res.Stage, status, res.Reason)
	}
	tw.Flush()

	passed, failed := r.Counts()
	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
}

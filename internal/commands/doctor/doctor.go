// Package doctor runs health checks over a parley installation.
package doctor

import "context"

// Status is the outcome of a single check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckItem is one line of a check result.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Worst returns the most severe status among the items.
func (r Result) Worst() Status {
	worst := StatusPass
	for _, item := range r.Items {
		worst = max(worst, item.Status)
	}
	return worst
}

func (r *Result) add(label string, status Status, detail string) {
	r.Items = append(r.Items, CheckItem{Label: label, Status: status, Detail: detail})
}

// Check is a single health check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs checks in order. Checks not started before ctx is done are
// reported as failed.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			r := Result{Name: check.Name()}
			r.add("skipped", StatusFail, err.Error())
			results = append(results, r)
			continue
		}
		results = append(results, check.Run(ctx))
	}
	return results
}

// Summary counts passed, warned and failed items across results.
func Summary(results []Result) (passed, warned, failed int) {
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				passed++
			case StatusWarn:
				warned++
			case StatusFail:
				failed++
			}
		}
	}
	return
}

// CountFixable counts the unresolved items that --fix can repair.
func CountFixable(results []Result) int {
	count := 0
	for _, r := range results {
		for _, item := range r.Items {
			if item.Fixable && item.Status != StatusPass {
				count++
			}
		}
	}
	return count
}

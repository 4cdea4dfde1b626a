package applier

import "errors"

// Kind is the target of one outcome.
type Kind string

const (
	KindDirective Kind = "directive"
	KindOption    Kind = "option"
)

// Status is the result of one key.
type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusPlanned Status = "planned"
)

// Outcome records what happened to one preset key.
type Outcome struct {
	Key    string `json:"key"`
	Kind   Kind   `json:"kind"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
}

// Result is the outcome list of one Apply.
type Result struct {
	Target    string
	Preset    string
	Outcomes  []Outcome
	Applied   int
	Failed    int
	Skipped   int
	Planned   int
	Activated bool
	PurgeErr  error
	DryRun    bool
	// Diff is the unified diff of planned config-block edits (dry run only).
	Diff string
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusApplied:
		r.Applied++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	case StatusPlanned:
		r.Planned++
	}
}

// Failures returns the failed outcomes.
func (r *Result) Failures() []Outcome {
	return r.filter(StatusFailed)
}

// Outcome returns the outcome for a preset key such as "cache.gzip".
func (r *Result) Outcome(key string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Key == key {
			return o, true
		}
	}
	return Outcome{}, false
}

func (r *Result) filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Label classifies the run for metrics and the audit trail.
func (r *Result) Label(err error) string {
	switch {
	case errors.Is(err, ErrNotApplicable):
		return "not-applicable"
	case errors.Is(err, ErrEmptyPreset):
		return "empty"
	case errors.Is(err, ErrEnableFailed):
		return "enable-failed"
	case err != nil:
		return "error"
	case r.DryRun:
		return "dry-run"
	case r.Failed > 0:
		return "partial"
	}
	return "ok"
}

package verify

import (
	"fmt"
	"io"
)

// Status classifies one entry.
type Status string

const (
	StatusOK    Status = "OK"
	StatusWarn  Status = "WARN"
	StatusError Status = "ERROR"
	// StatusInfo lines are informational and never affect the aggregate.
	StatusInfo Status = "INFO"
)

func (s Status) rank() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarn:
		return 1
	}
	return 0
}

// ExitCode maps a status onto the process exit code.
func (s Status) ExitCode() int {
	return s.rank()
}

// Entry is one line of a validation result.
type Entry struct {
	Subject string `json:"subject"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Status, e.Subject, e.Message)
}

// Result is the ordered outcome of one validation.
type Result struct {
	Target  string  `json:"target"`
	Preset  string  `json:"preset"`
	Entries []Entry `json:"entries"`
}

func (r *Result) add(subject string, status Status, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{Subject: subject, Status: status, Message: fmt.Sprintf(format, args...)})
}

// Status is ERROR if any entry is ERROR, else WARN if any is WARN, else OK.
func (r *Result) Status() Status {
	agg := StatusOK
	for _, e := range r.Entries {
		if e.Status.rank() > agg.rank() {
			agg = e.Status
		}
	}
	return agg
}

// ExitCode returns 0, 1 or 2 for OK, WARN or ERROR.
func (r *Result) ExitCode() int {
	return r.Status().ExitCode()
}

// Count returns the number of entries per status.
func (r *Result) Count() map[string]int {
	out := make(map[string]int)
	for _, e := range r.Entries {
		out[string(e.Status)]++
	}
	return out
}

// Filter returns the entries with status s.
func (r *Result) Filter(s Status) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == s {
			out = append(out, e)
		}
	}
	return out
}

// WriteTo writes one prefixed line per entry.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, e := range r.Entries {
		c, err := fmt.Fprintln(w, e.String())
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

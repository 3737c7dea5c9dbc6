// Package report collects violations from the validation phases and
// writes them out.
package report

import (
	"fmt"
	"sort"
)

// Phase names the pipeline stage that produced a violation.
type Phase string

const (
	PhaseFatal     Phase = "fatal"
	PhaseParse     Phase = "parse"
	PhaseShape     Phase = "shape"
	PhaseReference Phase = "reference"
)

// Violation is one defect found in the schema set.
type Violation struct {
	File    string `json:"file"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"` // raw reference string for reference violations
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.File, v.Message)
}

// Report is the outcome of one validation run.
type Report struct {
	Root       string      `json:"root"`
	Files      int         `json:"files"`
	Phase      Phase       `json:"phase,omitempty"` // last phase that ran
	Violations []Violation `json:"violations"`
}

// New returns an empty report for root.
func New(root string) *Report {
	return &Report{Root: root, Violations: []Violation{}}
}

// Add appends violations in the order given.
func (r *Report) Add(vs ...Violation) {
	r.Violations = append(r.Violations, vs...)
}

// OK reports whether the run found no violations at all.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// ByFile groups violations per file. Files are sorted; within a file the
// discovery order is kept.
func (r *Report) ByFile() []FileViolations {
	idx := make(map[string]int)
	var out []FileViolations
	for _, v := range r.Violations {
		i, ok := idx[v.File]
		if !ok {
			i = len(out)
			idx[v.File] = i
			out = append(out, FileViolations{File: v.File})
		}
		out[i].Violations = append(out[i].Violations, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// FileViolations is the slice of a report belonging to one file.
type FileViolations struct {
	File       string
	Violations []Violation
}

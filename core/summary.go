package core

import (
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// BatchSummary counts batch outcomes. Total == Success + Skipped + Errored and
// the ErrorTypes values sum to Errored.
type BatchSummary struct {
	Total      int            `json:"total"`
	Success    int            `json:"success"`
	Skipped    int            `json:"skipped"`
	Errored    int            `json:"errored"`
	ErrorTypes map[string]int `json:"error_types"`
}

// Summarize reduces results to counts. It is order independent.
func Summarize(results []BatchResult) BatchSummary {
	var a Aggregator
	for _, r := range results {
		a.Add(r)
	}
	return a.Summary()
}

// Aggregator builds a BatchSummary incrementally, for example while results
// stream in. The zero value is ready to use. It is not safe for concurrent use.
type Aggregator struct {
	s BatchSummary
}

// Add folds one result into the running counts.
func (a *Aggregator) Add(r BatchResult) {
	a.s.Total++
	switch {
	case r.Success():
		a.s.Success++
	case r.Category() == apperrors.CategoryUnreadableImage:
		a.s.Skipped++
	default:
		a.s.Errored++
		if a.s.ErrorTypes == nil {
			a.s.ErrorTypes = make(map[string]int)
		}
		a.s.ErrorTypes[string(r.Category())]++
	}
}

// Merge folds another aggregator's counts into a.
func (a *Aggregator) Merge(other *Aggregator) {
	a.s.Total += other.s.Total
	a.s.Success += other.s.Success
	a.s.Skipped += other.s.Skipped
	a.s.Errored += other.s.Errored
	for k, v := range other.s.ErrorTypes {
		if a.s.ErrorTypes == nil {
			a.s.ErrorTypes = make(map[string]int)
		}
		a.s.ErrorTypes[k] += v
	}
}

// Summary returns a copy of the current counts. ErrorTypes is never nil.
func (a *Aggregator) Summary() BatchSummary {
	out := a.s
	out.ErrorTypes = make(map[string]int, len(a.s.ErrorTypes))
	for k, v := range a.s.ErrorTypes {
		out.ErrorTypes[k] = v
	}
	return out
}

// Collect drains ch into a slice in arrival order.
func Collect(ch <-chan BatchResult) []BatchResult {
	var out []BatchResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

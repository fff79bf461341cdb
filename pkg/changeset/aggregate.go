package changeset

import (
	"github.com/fulmenhq/sfdelta/pkg/metadata"
)

// Classifier classifies a single path.
type Classifier interface {
	Explain(path string) (metadata.Component, metadata.Miss)
}

// Filter decides whether a path is excluded before classification.
type Filter interface {
	Skip(path string) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(path string) bool

// Skip calls f.
func (f FilterFunc) Skip(path string) bool { return f(path) }

// Skip records a path that did not contribute a component.
type Skip struct {
	Path     string `json:"path"`
	Reason   string `json:"reason"`
	Filtered bool   `json:"filtered,omitempty"`
}

// Stats summarizes one aggregation.
type Stats struct {
	Records    int `json:"records"`
	Classified int `json:"classified"`
	Skipped    int `json:"skipped"`
	Filtered   int `json:"filtered"`
}

// Result is the outcome of aggregating a change stream.
type Result struct {
	Present *Set   `json:"-"`
	Absent  *Set   `json:"-"`
	Stats   Stats  `json:"stats"`
	Skips   []Skip `json:"skips,omitempty"`
}

// Aggregator buckets change records into present and absent component sets.
type Aggregator struct {
	classifier Classifier
	filters    []Filter
}

// NewAggregator returns an aggregator using c. Nil filters are ignored.
func NewAggregator(c Classifier, filters ...Filter) *Aggregator {
	a := &Aggregator{classifier: c}
	for _, f := range filters {
		if f != nil {
			a.filters = append(a.filters, f)
		}
	}
	return a
}

// Aggregate classifies every record. Added and modified records contribute
// their new path to Present, deleted records their old path to Absent, and a
// rename contributes to both independently.
func (a *Aggregator) Aggregate(records []Record) *Result {
	res := &Result{Present: NewSet(), Absent: NewSet()}
	for _, rec := range records {
		res.Stats.Records++
		switch rec.Kind {
		case Added, Modified:
			a.collect(res, res.Present, rec.NewPath)
		case Deleted:
			a.collect(res, res.Absent, rec.OldPath)
		case Renamed:
			a.collect(res, res.Present, rec.NewPath)
			a.collect(res, res.Absent, rec.OldPath)
		default:
			res.Stats.Skipped++
			res.Skips = append(res.Skips, Skip{Path: rec.path(), Reason: "unsupported change kind"})
		}
	}
	return res
}

func (a *Aggregator) collect(res *Result, into *Set, path string) {
	if path == "" {
		res.Stats.Skipped++
		res.Skips = append(res.Skips, Skip{Reason: "missing path"})
		return
	}
	for _, f := range a.filters {
		if f.Skip(path) {
			res.Stats.Filtered++
			res.Skips = append(res.Skips, Skip{Path: path, Reason: "filtered", Filtered: true})
			return
		}
	}
	comp, miss := a.classifier.Explain(path)
	if miss != metadata.Matched {
		res.Stats.Skipped++
		res.Skips = append(res.Skips, Skip{Path: path, Reason: miss.String()})
		return
	}
	res.Stats.Classified++
	into.AddComponent(comp)
}

// Aggregate runs a one-off aggregation with the default classifier.
func Aggregate(records []Record) (present, absent *Set) {
	res := NewAggregator(metadata.Default()).Aggregate(records)
	return res.Present, res.Absent
}

//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package metrics

import (
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
)

const unset = -1

// Set coordinates the collectors of every requested metric over one bucket
// space. Documents must be added in ascending order: the null group, the
// summary and the per bucket deduplication compare against the last
// document seen instead of keeping sets.
type Set struct {
	collectors []Collector
	size       int

	lastDoc    []int
	hitDoc     int
	nullDoc    int
	summaryDoc int
	nullHits   int
}

func NewSet(collectors []Collector) *Set {
	return &Set{
		collectors: collectors,
		size:       unset,
		hitDoc:     unset,
		nullDoc:    unset,
		summaryDoc: unset,
	}
}

// Fork returns an empty set with the same metrics, used for nested levels.
func (s *Set) Fork() *Set {
	collectors := make([]Collector, len(s.collectors))
	for i, c := range s.collectors {
		collectors[i] = c.Fork()
	}
	return NewSet(collectors)
}

// SetSize allocates n buckets plus the null group and the summary. All
// field collectors sharing a set must have the same size.
func (s *Set) SetSize(n int) error {
	if s.size != unset {
		if s.size != n {
			return enterrors.NewConfigurationError(
				"metrics cannot be applied to different fields: bucket sizes %d and %d", s.size, n)
		}
		return nil
	}

	s.size = n
	for _, c := range s.collectors {
		c.SetSize(n + 2)
	}
	s.lastDoc = make([]int, n)
	for i := range s.lastDoc {
		s.lastDoc[i] = unset
	}
	return nil
}

func (s *Set) Size() int {
	return s.size
}

func (s *Set) nullIndex() int {
	return s.size
}

func (s *Set) summaryIndex() int {
	return s.size + 1
}

func (s *Set) NewValueSet() aggregation.ValueSet {
	out := make(aggregation.ValueSet, len(s.collectors))
	for i, c := range s.collectors {
		out[i] = c.NewValue()
	}
	return out
}

// Count resets values and feeds the inputs of doc into them.
func (s *Set) Count(doc int, values aggregation.ValueSet) {
	values.Reset()
	for i, c := range s.collectors {
		c.Count(doc, values[i])
	}
}

// Add merges the values of doc into bucket. A document reaching the same
// bucket a second time, e.g. through two links, is ignored. Add reports
// whether the values were merged.
func (s *Set) Add(doc, bucket int, values aggregation.ValueSet) bool {
	if s.lastDoc[bucket] == doc {
		return false
	}
	s.lastDoc[bucket] = doc
	s.hitDoc = doc
	s.add(bucket, values)
	return true
}

// AddDoc is called once all buckets of doc were added. It adds doc to the
// summary and, if it reached no bucket, to the null group.
func (s *Set) AddDoc(doc int, values aggregation.ValueSet) {
	if s.summaryDoc != doc {
		s.summaryDoc = doc
		s.add(s.summaryIndex(), values)
	}
	if s.hitDoc != doc && s.nullDoc != doc {
		s.nullDoc = doc
		s.nullHits++
		s.add(s.nullIndex(), values)
	}
}

func (s *Set) add(index int, values aggregation.ValueSet) {
	for i, c := range s.collectors {
		c.Add(index, values[i])
	}
}

func (s *Set) get(index int) aggregation.ValueSet {
	out := make(aggregation.ValueSet, len(s.collectors))
	for i, c := range s.collectors {
		out[i] = c.Get(index)
	}
	return out
}

// Get returns the converted values of bucket.
func (s *Set) Get(bucket int) aggregation.ValueSet {
	return s.Convert(s.get(bucket))
}

// Touched reports whether any document was added to bucket.
func (s *Set) Touched(bucket int) bool {
	return s.lastDoc[bucket] != unset
}

// Null returns the converted values of the documents that reached no
// bucket, ok is false if there were none.
func (s *Set) Null() (aggregation.ValueSet, bool) {
	if s.nullHits == 0 {
		return nil, false
	}
	return s.Convert(s.get(s.nullIndex())), true
}

// Summary returns the converted values over every document.
func (s *Set) Summary() aggregation.ValueSet {
	return s.Convert(s.get(s.summaryIndex()))
}

func (s *Set) Convert(values aggregation.ValueSet) aggregation.ValueSet {
	out := make(aggregation.ValueSet, len(values))
	for i, c := range s.collectors {
		out[i] = c.Convert(values[i])
	}
	return out
}

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

// Package grouping maps documents to the buckets of a grouping level.
package grouping

import (
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// Collector is the field collector of one grouping level. Buckets are
// indexes in [0, Size()).
type Collector interface {
	Size() int
	// Collect calls emit for every bucket doc falls into, possibly none.
	Collect(doc int, emit func(bucket int))
	Name(bucket int) string
	ID(bucket int) aggregation.GroupID
	// ReturnEmptyGroups is true if buckets without documents are part of
	// the result.
	ReturnEmptyGroups() bool
}

// Link fans a document out to the targets of a link field and delegates to
// the collector of the target table.
type Link struct {
	column segment.LinkColumn
	filter *helpers.Bitset
	inner  Collector
}

// NewLink skips targets outside filter, a nil filter keeps every target.
func NewLink(column segment.LinkColumn, filter *helpers.Bitset, inner Collector) *Link {
	return &Link{column: column, filter: filter, inner: inner}
}

func (l *Link) Size() int {
	return l.inner.Size()
}

func (l *Link) Collect(doc int, emit func(bucket int)) {
	for _, target := range l.column.Targets(doc) {
		if l.filter != nil && !l.filter.Get(target) {
			continue
		}
		l.inner.Collect(target, emit)
	}
}

func (l *Link) Name(bucket int) string {
	return l.inner.Name(bucket)
}

func (l *Link) ID(bucket int) aggregation.GroupID {
	return l.inner.ID(bucket)
}

func (l *Link) ReturnEmptyGroups() bool {
	return l.inner.ReturnEmptyGroups()
}

// AllName is the name of the single bucket of an ungrouped part.
const AllName = "*"

// Empty puts every document into one bucket.
type Empty struct{}

func NewEmpty() Empty {
	return Empty{}
}

func (Empty) Size() int { return 1 }

func (Empty) Collect(_ int, emit func(bucket int)) { emit(0) }

func (Empty) Name(int) string { return AllName }

func (Empty) ID(int) aggregation.GroupID { return aggregation.TextID(AllName) }

func (Empty) ReturnEmptyGroups() bool { return false }

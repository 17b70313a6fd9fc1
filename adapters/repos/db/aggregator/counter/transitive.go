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

package counter

import (
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// Closure returns the documents reachable from origin by following links at
// most depth times, breadth first. Every document is listed once and the
// origin always comes first. A depth of zero or above MaxTransitiveDepth is
// capped at MaxTransitiveDepth.
func Closure(links segment.LinkColumn, origin, depth int, filter *helpers.Bitset) []int {
	if depth <= 0 || depth > aggregation.MaxTransitiveDepth {
		depth = aggregation.MaxTransitiveDepth
	}

	visited := helpers.NewBitset(uint64(origin))
	out := []int{origin}
	frontier := []int{origin}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []int
		for _, doc := range frontier {
			for _, target := range links.Targets(doc) {
				if filter != nil && !filter.Get(target) {
					continue
				}
				if visited.Add(target) {
					out = append(out, target)
					next = append(next, target)
				}
			}
		}
		frontier = next
	}
	return out
}

// TransitiveLink hands every document of the closure except the origin to
// the inner counter.
type TransitiveLink struct {
	column segment.LinkColumn
	depth  int
	filter *helpers.Bitset
	inner  Counter
}

func NewTransitiveLink(column segment.LinkColumn, depth int, filter *helpers.Bitset, inner Counter) *TransitiveLink {
	return &TransitiveLink{column: column, depth: depth, filter: filter, inner: inner}
}

func (c *TransitiveLink) Add(doc int, value aggregation.Value) {
	for _, member := range Closure(c.column, doc, c.depth, c.filter)[1:] {
		c.inner.Add(member, value)
	}
}

// TransitiveLinkCount adds the size of the closure without the origin.
type TransitiveLinkCount struct {
	column segment.LinkColumn
	depth  int
	filter *helpers.Bitset
}

func NewTransitiveLinkCount(column segment.LinkColumn, depth int, filter *helpers.Bitset) *TransitiveLinkCount {
	return &TransitiveLinkCount{column: column, depth: depth, filter: filter}
}

func (c *TransitiveLinkCount) Add(doc int, value aggregation.Value) {
	if n := len(Closure(c.column, doc, c.depth, c.filter)) - 1; n > 0 {
		value.Add(int64(n))
	}
}

// TransitiveLinkValue adds the id rank of every document of the closure
// except the origin.
type TransitiveLinkValue struct {
	column segment.LinkColumn
	ids    segment.IDColumn
	depth  int
	filter *helpers.Bitset
}

func NewTransitiveLinkValue(column segment.LinkColumn, ids segment.IDColumn, depth int,
	filter *helpers.Bitset,
) *TransitiveLinkValue {
	return &TransitiveLinkValue{column: column, ids: ids, depth: depth, filter: filter}
}

func (c *TransitiveLinkValue) Add(doc int, value aggregation.Value) {
	for _, member := range Closure(c.column, doc, c.depth, c.filter)[1:] {
		value.Add(int64(c.ids.Rank(member)))
	}
}

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

package aggregation

import (
	"container/heap"
)

// groupCursor walks the sorted groups of one input.
type groupCursor struct {
	groups []*Group
	pos    int
	source int
}

func (c *groupCursor) head() *Group {
	return c.groups[c.pos]
}

// groupHeap is a min-heap of cursors keyed by the id of their head group.
// Ties keep input order so merging stays deterministic.
type groupHeap []*groupCursor

func (h groupHeap) Len() int { return len(h) }

func (h groupHeap) Less(i, j int) bool {
	cmp := CompareIDs(h[i].head().ID, h[j].head().ID)
	if cmp == 0 {
		return h[i].source < h[j].source
	}
	return cmp < 0
}

func (h groupHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *groupHeap) Push(x interface{}) {
	*h = append(*h, x.(*groupCursor))
}

func (h *groupHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Merge combines independently computed results into one. Inputs are
// consumed: their groups are reused and mutated. Groups with equal ids are
// coalesced, document counts and summaries are added up and, if top is not
// zero, only the top groups by first metric are kept.
func Merge(results []*Result, top int) *Result {
	out := &Result{}
	h := make(groupHeap, 0, len(results))
	total := 0

	for i, res := range results {
		if res == nil {
			continue
		}
		out.DocumentsCount += res.DocumentsCount
		if res.Summary != nil {
			if out.Summary == nil {
				out.Summary = res.Summary
			} else {
				out.Summary.Merge(res.Summary)
			}
		}
		if len(res.Groups) == 0 {
			continue
		}
		res.SortGroups()
		total += len(res.Groups)
		h = append(h, &groupCursor{groups: res.Groups, source: i})
	}

	heap.Init(&h)
	out.Groups = make([]*Group, 0, total)
	var current *Group
	for h.Len() > 0 {
		cursor := h[0]
		next := cursor.head()
		cursor.pos++
		if cursor.pos == len(cursor.groups) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}

		if current != nil && current.Equal(next) {
			current.Merge(next)
			continue
		}
		current = next
		out.Groups = append(out.Groups, current)
	}

	out.GroupsCount = len(out.Groups)
	out.limit(top)
	return out
}

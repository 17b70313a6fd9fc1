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

package aggregator

import (
	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/grouping"
	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/metrics"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// node holds the metrics of one grouping level. Every bucket a document
// reaches on the level gets a child node for the next level.
type node struct {
	set      *metrics.Set
	children map[int]*node
	lastDoc  int
	docs     int
}

func newNode(set *metrics.Set) *node {
	return &node{set: set, children: map[int]*node{}, lastDoc: -1}
}

// grouper is the component which routes every matched document through the
// field collectors of each part it matched. Parts share the node tree, so
// collectors of the same depth must agree on their bucket count.
type grouper struct {
	// levels holds the collectors per part and depth
	levels  [][]grouping.Collector
	grouped bool
	root    *node
	values  aggregation.ValueSet
	touched []*node
}

func newGrouper(set *metrics.Set, levels [][]grouping.Collector, grouped bool) (*grouper, error) {
	for depth := range levels[0] {
		probe := set
		if depth > 0 {
			probe = set.Fork()
		}
		for _, part := range levels {
			if err := probe.SetSize(part[depth].Size()); err != nil {
				return nil, err
			}
		}
	}

	return &grouper{
		levels:  levels,
		grouped: grouped,
		root:    newNode(set),
		values:  set.NewValueSet(),
	}, nil
}

// count feeds doc into the scratch values, once per matched document.
func (g *grouper) count(doc int) {
	g.root.set.Count(doc, g.values)
}

func (g *grouper) add(doc, part int) {
	g.descend(g.root, g.levels[part], 0, doc)
}

func (g *grouper) descend(n *node, levels []grouping.Collector, depth, doc int) {
	g.touch(n, doc)
	if depth == len(levels) {
		return
	}

	levels[depth].Collect(doc, func(bucket int) {
		n.set.Add(doc, bucket, g.values)
		if depth+1 < len(levels) {
			g.descend(g.child(n, bucket, depth+1), levels, depth+1, doc)
		}
	})
}

func (g *grouper) child(n *node, bucket, depth int) *node {
	child, ok := n.children[bucket]
	if !ok {
		set := n.set.Fork()
		// sizes were checked by newGrouper
		_ = set.SetSize(g.levels[0][depth].Size())
		child = newNode(set)
		n.children[bucket] = child
	}
	return child
}

func (g *grouper) touch(n *node, doc int) {
	if n.lastDoc == doc {
		return
	}
	n.lastDoc = doc
	g.touched = append(g.touched, n)
}

// finish registers doc with the summary and null group of every node it
// reached.
func (g *grouper) finish(doc int) {
	for _, n := range g.touched {
		n.set.AddDoc(doc, g.values)
		n.docs++
	}
	g.touched = g.touched[:0]
}

func (g *grouper) result() *aggregation.Result {
	res := g.level(g.root, 0)
	res.Summary = &aggregation.Group{Metrics: g.root.set.Summary()}
	return res
}

func (g *grouper) level(n *node, depth int) *aggregation.Result {
	res := &aggregation.Result{DocumentsCount: n.docs}
	if !g.grouped {
		return res
	}

	c := g.levels[0][depth]
	for bucket := 0; bucket < c.Size(); bucket++ {
		if !n.set.Touched(bucket) && !c.ReturnEmptyGroups() {
			continue
		}
		group := aggregation.NewGroup(c.ID(bucket), c.Name(bucket), n.set.Get(bucket))
		if child, ok := n.children[bucket]; ok {
			group.Inner = g.level(child, depth+1)
		}
		res.Groups = append(res.Groups, group)
	}
	if null, ok := n.set.Null(); ok {
		res.Groups = append(res.Groups, &aggregation.Group{Metrics: null})
	}
	res.GroupsCount = len(res.Groups)
	return res
}

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
	"sort"
	"strings"
)

// GroupID orders groups. IDs of different kinds order numbers before text.
type GroupID interface {
	Compare(other GroupID) int
}

type IntID int64

type FloatID float64

type TextID string

func (id IntID) Compare(other GroupID) int {
	switch o := other.(type) {
	case IntID:
		return compareInt(int64(id), int64(o))
	case FloatID:
		return compareFloat(float64(id), float64(o))
	default:
		return -1
	}
}

func (id FloatID) Compare(other GroupID) int {
	switch o := other.(type) {
	case IntID:
		return compareFloat(float64(id), float64(o))
	case FloatID:
		return compareFloat(float64(id), float64(o))
	default:
		return -1
	}
}

func (id TextID) Compare(other GroupID) int {
	switch o := other.(type) {
	case TextID:
		return strings.Compare(string(id), string(o))
	default:
		return 1
	}
}

// CompareIDs orders a missing id before every other id.
func CompareIDs(a, b GroupID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(b)
	}
}

// Result is one level of an aggregation. Groups own their nested level.
type Result struct {
	DocumentsCount int
	GroupsCount    int
	// Summary holds the totals over every matched document. It is only
	// set on the top level.
	Summary *Group
	Groups  []*Group
}

type Group struct {
	ID      GroupID
	Name    *string
	Metrics ValueSet
	Inner   *Result
}

func NewGroup(id GroupID, name string, metrics ValueSet) *Group {
	return &Group{ID: id, Name: &name, Metrics: metrics}
}

// Equal compares ids only, two groups without id are equal.
func (g *Group) Equal(other *Group) bool {
	return CompareIDs(g.ID, other.ID) == 0
}

// Merge adds other into g. Nested levels are merged without a limit, limits
// are applied once the whole tree is merged.
func (g *Group) Merge(other *Group) {
	g.Metrics.Merge(other.Metrics)
	switch {
	case g.Inner != nil && other.Inner != nil:
		g.Inner = Merge([]*Result{g.Inner, other.Inner}, 0)
	case g.Inner == nil:
		g.Inner = other.Inner
	}
}

func (g *Group) DisplayName() string {
	if g.Name == nil {
		return ""
	}
	return *g.Name
}

// SortGroups orders groups by id.
func (r *Result) SortGroups() {
	sort.SliceStable(r.Groups, func(a, b int) bool {
		return CompareIDs(r.Groups[a].ID, r.Groups[b].ID) < 0
	})
}

// limit keeps the top groups by first metric, descending for positive top
// and ascending for negative top. Zero keeps every group in id order.
func (r *Result) limit(top int) {
	if top == 0 {
		return
	}
	if top > 0 {
		sort.SliceStable(r.Groups, func(a, b int) bool {
			return r.Groups[a].Metrics.Compare(r.Groups[b].Metrics) > 0
		})
	} else {
		top = -top
		sort.SliceStable(r.Groups, func(a, b int) bool {
			return r.Groups[a].Metrics.Compare(r.Groups[b].Metrics) < 0
		})
	}
	if len(r.Groups) > top {
		r.Groups = r.Groups[:top]
	}
}

// ApplyLimits trims every level of the tree, tops[i] being the limit of
// nesting depth i.
func ApplyLimits(r *Result, tops []int) {
	if r == nil || len(tops) == 0 {
		return
	}
	r.limit(tops[0])
	for _, g := range r.Groups {
		ApplyLimits(g.Inner, tops[1:])
	}
}

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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// postProcess applies the name options of every level, innermost first, and
// merges groups whose ids collide afterwards. Date periods coarser than a
// day collide here too.
func postProcess(res *aggregation.Result, levels []*aggregation.GroupingStep) *aggregation.Result {
	if res == nil || len(levels) == 0 {
		return res
	}
	for _, g := range res.Groups {
		g.Inner = postProcess(g.Inner, levels[1:])
	}

	step := levels[0]
	groups := filterNames(res.Groups, step.Include, step.Exclude)
	if step.Tokenize {
		groups = tokenize(groups)
	}
	if step.Case != aggregation.CaseNone {
		groups = changeCase(groups, step.Case)
	}

	summary := res.Summary
	merged := aggregation.Merge([]*aggregation.Result{{
		DocumentsCount: res.DocumentsCount,
		Groups:         groups,
	}}, 0)
	merged.Summary = summary
	return merged
}

// filterNames keeps the null group unless an include list is given.
func filterNames(groups []*aggregation.Group, include, exclude []string) []*aggregation.Group {
	if len(include) == 0 && len(exclude) == 0 {
		return groups
	}
	included, excluded := toSet(include), toSet(exclude)

	out := groups[:0]
	for _, g := range groups {
		if g.Name == nil {
			if len(include) == 0 {
				out = append(out, g)
			}
			continue
		}
		if _, ok := excluded[*g.Name]; ok {
			continue
		}
		if _, ok := included[*g.Name]; len(include) > 0 && !ok {
			continue
		}
		out = append(out, g)
	}
	return out
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, item := range in {
		out[item] = struct{}{}
	}
	return out
}

// tokenize replaces every named group by one group per word of its name.
// Groups without words are dropped.
func tokenize(groups []*aggregation.Group) []*aggregation.Group {
	out := make([]*aggregation.Group, 0, len(groups))
	for _, g := range groups {
		if g.Name == nil {
			out = append(out, g)
			continue
		}
		for _, word := range helpers.TokenizeWords(*g.Name) {
			token := aggregation.NewGroup(aggregation.TextID(word), word, g.Metrics.Clone())
			token.Inner = cloneResult(g.Inner)
			out = append(out, token)
		}
	}
	return out
}

func changeCase(groups []*aggregation.Group, mode aggregation.CaseMode) []*aggregation.Group {
	var caser cases.Caser
	switch mode {
	case aggregation.CaseUpper:
		caser = cases.Upper(language.Und)
	case aggregation.CaseFold:
		caser = cases.Fold()
	default:
		caser = cases.Lower(language.Und)
	}

	for _, g := range groups {
		if g.Name == nil {
			continue
		}
		name := caser.String(*g.Name)
		g.Name = &name
		if _, ok := g.ID.(aggregation.TextID); ok {
			g.ID = aggregation.TextID(name)
		}
	}
	return groups
}

func cloneResult(res *aggregation.Result) *aggregation.Result {
	if res == nil {
		return nil
	}
	out := &aggregation.Result{
		DocumentsCount: res.DocumentsCount,
		GroupsCount:    res.GroupsCount,
		Groups:         make([]*aggregation.Group, len(res.Groups)),
	}
	if res.Summary != nil {
		out.Summary = cloneGroup(res.Summary)
	}
	for i, g := range res.Groups {
		out.Groups[i] = cloneGroup(g)
	}
	return out
}

func cloneGroup(g *aggregation.Group) *aggregation.Group {
	out := &aggregation.Group{ID: g.ID, Metrics: g.Metrics.Clone(), Inner: cloneResult(g.Inner)}
	if g.Name != nil {
		name := *g.Name
		out.Name = &name
	}
	return out
}

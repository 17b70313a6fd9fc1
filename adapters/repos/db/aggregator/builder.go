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
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/grouping"
	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/metrics"
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// builder computes the result of one request on one shard. A builder is
// used for a single attempt, retries start over with a fresh one.
type builder struct {
	params        *aggregation.Params
	searcher      segment.Searcher
	eval          inverted.FilterEvaluator
	grouping      grouping.Config
	checkInterval int
	logger        logrus.FieldLogger

	scanned int
}

func (b *builder) build(ctx context.Context) (*aggregation.Result, error) {
	filters, err := b.filters()
	if err != nil {
		return nil, errors.Wrap(err, "build filters")
	}

	if b.params.IsCountOnly() {
		b.logger.Debug("count only, skipping collectors")
		return b.countOnly(filters), nil
	}

	g, err := b.grouper()
	if err != nil {
		return nil, err
	}
	if err := b.scan(ctx, filters, g); err != nil {
		return nil, err
	}

	res := g.result()
	return postProcess(res, b.params.Parts[0].Grouping), nil
}

func (b *builder) filters() ([]*helpers.Bitset, error) {
	out := make([]*helpers.Bitset, len(b.params.Parts))
	for i, part := range b.params.Parts {
		filter, err := b.eval.Evaluate(b.searcher, part.Filter)
		if err != nil {
			return nil, errors.Wrapf(err, "part %d", i)
		}
		out[i] = filter
	}
	return out, nil
}

// countOnly answers a bare COUNT(*) from the filters alone.
func (b *builder) countOnly(filters []*helpers.Bitset) *aggregation.Result {
	matched := filters[0].Clone()
	for _, filter := range filters[1:] {
		matched.Or(filter)
	}
	count := matched.CountSet()
	b.scanned = count

	value := aggregation.NewCount()
	value.Add(int64(count))
	return &aggregation.Result{
		DocumentsCount: count,
		Summary:        &aggregation.Group{Metrics: aggregation.ValueSet{value}},
	}
}

func (b *builder) grouper() (*grouper, error) {
	collectors := make([]metrics.Collector, len(b.params.Metrics))
	for i, m := range b.params.Metrics {
		c, err := metrics.New(m, b.searcher, b.eval)
		if err != nil {
			return nil, err
		}
		collectors[i] = c
	}

	grouped := b.params.Depth() > 0
	levels := make([][]grouping.Collector, len(b.params.Parts))
	for i, part := range b.params.Parts {
		if !grouped {
			levels[i] = []grouping.Collector{grouping.NewEmpty()}
			continue
		}
		levels[i] = make([]grouping.Collector, len(part.Grouping))
		for depth, level := range part.Grouping {
			c, err := grouping.New(level, b.searcher, b.eval, b.grouping)
			if err != nil {
				return nil, errors.Wrapf(err, "part %d", i)
			}
			levels[i][depth] = c
		}
	}

	return newGrouper(metrics.NewSet(collectors), levels, grouped)
}

// scan feeds every document matched by a part through the collectors of
// that part. Documents are visited in ascending order.
func (b *builder) scan(ctx context.Context, filters []*helpers.Bitset, g *grouper) error {
	for doc := 0; doc < b.searcher.DocCount(); doc++ {
		if doc%b.checkInterval == 0 {
			if err := b.check(ctx); err != nil {
				return err
			}
		}

		matched := false
		for part, filter := range filters {
			if !filter.Get(doc) {
				continue
			}
			if !matched {
				g.count(doc)
				matched = true
			}
			g.add(doc, part)
		}
		if matched {
			g.finish(doc)
			b.scanned++
		}
	}
	return b.check(ctx)
}

func (b *builder) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.searcher.Check()
}

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

// Package duplicates finds objects stored in more than one shard of a class.
package duplicates

import (
	"container/heap"
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/usecases/monitoring"
)

const (
	operationDuplicates = "duplicates"

	// maxAttempts bounds the scans of one request, there is no final
	// attempt after the last segment-gone failure.
	maxAttempts = 5

	checkInterval = 4096
)

type Duplicate struct {
	ID     string   `json:"id"`
	Shards []string `json:"shards"`
}

type Result struct {
	DocumentsCount int         `json:"documentsCount"`
	Duplicates     []Duplicate `json:"duplicates"`
}

type Detector struct {
	store         segment.Store
	retryInterval time.Duration
	logger        logrus.FieldLogger
	metrics       *monitoring.PrometheusMetrics
}

func New(store segment.Store, retryInterval time.Duration, logger logrus.FieldLogger,
	metrics *monitoring.PrometheusMetrics,
) *Detector {
	return &Detector{
		store:         store,
		retryInterval: retryInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Find merges the sorted id streams of every shard holding class and
// reports each id seen in more than one of them.
func (d *Detector) Find(ctx context.Context, class string) (*Result, error) {
	logger := d.logger.WithField("action", "find_duplicates").WithField("class", class)
	start := time.Now()
	shards := d.store.Shards(class)

	var res *Result
	attempt := 0
	op := func() error {
		attempt++
		var err error
		res, err = d.scan(ctx, class, shards)
		if err == nil {
			return nil
		}
		if enterrors.IsSegmentGone(err) {
			d.metrics.SegmentRetry(operationDuplicates)
			logger.WithField("attempt", attempt).WithError(err).Warn("segment gone, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewConstantBackOff(d.retryInterval), maxAttempts-1), ctx)
	err := backoff.Retry(op, policy)
	d.metrics.ShardAggregated(operationDuplicates, err)
	if err != nil {
		if enterrors.IsSegmentGone(err) {
			return nil, enterrors.NewUnableToComplete(errors.Wrapf(err, "class %s", class))
		}
		return nil, errors.Wrapf(err, "class %s", class)
	}

	took := time.Since(start)
	d.metrics.AddDocumentsScanned(class, res.DocumentsCount)
	d.metrics.ObserveAggregation(class, operationDuplicates, took)
	logger.WithField("shards", len(shards)).
		WithField("documents", res.DocumentsCount).
		WithField("duplicates", len(res.Duplicates)).
		WithField("took", took).
		Debug("duplicate detection completed")
	return res, nil
}

func (d *Detector) scan(ctx context.Context, class string, shards []string) (*Result, error) {
	h := make(cursorHeap, 0, len(shards))
	for i, shard := range shards {
		searcher, err := d.store.Open(ctx, class, shard)
		if err != nil {
			return nil, errors.Wrapf(err, "shard %s", shard)
		}
		defer searcher.Close()

		c := &cursor{stream: searcher.SortedIDs(), shard: i}
		ok, err := c.advance()
		if err != nil {
			return nil, errors.Wrapf(err, "shard %s", shard)
		}
		if ok {
			h = append(h, c)
		}
	}
	heap.Init(&h)

	res := &Result{Duplicates: []Duplicate{}}
	var (
		current string
		seen    []int
	)
	flush := func() {
		if len(seen) < 2 {
			return
		}
		names := make([]string, len(seen))
		for i, shard := range seen {
			names[i] = shards[shard]
		}
		res.Duplicates = append(res.Duplicates, Duplicate{ID: current, Shards: names})
	}

	for h.Len() > 0 {
		if res.DocumentsCount%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		c := h[0]
		id, shard := c.id, c.shard
		res.DocumentsCount++

		ok, err := c.advance()
		if err != nil {
			return nil, errors.Wrapf(err, "shard %s", shards[c.shard])
		}
		if ok {
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}

		if id != current || len(seen) == 0 {
			flush()
			current, seen = id, seen[:0]
		}
		if len(seen) == 0 || seen[len(seen)-1] != shard {
			seen = append(seen, shard)
		}
	}
	flush()
	return res, nil
}

// cursor holds the current id of one shard stream.
type cursor struct {
	stream segment.IDStream
	shard  int
	id     string
}

func (c *cursor) advance() (bool, error) {
	id, ok := c.stream.Next()
	if !ok {
		return false, c.stream.Err()
	}
	c.id = id
	return true, nil
}

// cursorHeap orders cursors by id, ties by shard.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if h[i].id == h[j].id {
		return h[i].shard < h[j].shard
	}
	return h[i].id < h[j].id
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x interface{}) {
	*h = append(*h, x.(*cursor))
}

func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

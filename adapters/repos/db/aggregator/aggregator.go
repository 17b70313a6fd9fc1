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

// Package aggregator computes aggregation results per shard and merges them
// into the result of a request.
package aggregator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/grouping"
	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/usecases/monitoring"
)

const (
	operationAggregate = "aggregate"

	// segmentRetries is the number of times a shard scan is restarted after
	// its segment was compacted away.
	segmentRetries = 1

	DefaultCheckInterval = 1024
)

type Config struct {
	// MaxConcurrentShards limits parallel shard scans, 0 means no limit.
	MaxConcurrentShards int
	MaxBuckets          int
	Location            *time.Location
	RetryInterval       time.Duration
	// CheckInterval is the number of documents between cancellation checks.
	CheckInterval int
}

type Aggregator struct {
	store   segment.Store
	eval    inverted.FilterEvaluator
	config  Config
	logger  logrus.FieldLogger
	metrics *monitoring.PrometheusMetrics
}

func New(store segment.Store, eval inverted.FilterEvaluator, config Config,
	logger logrus.FieldLogger, metrics *monitoring.PrometheusMetrics,
) *Aggregator {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultCheckInterval
	}
	return &Aggregator{
		store:   store,
		eval:    eval,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Aggregate runs params on every shard of the class and merges the shard
// results. Top-N limits are applied once, on the merged tree.
func (a *Aggregator) Aggregate(ctx context.Context, params *aggregation.Params) (*aggregation.Result, error) {
	start := time.Now()
	shards := params.Shards
	if len(shards) == 0 {
		shards = a.store.Shards(params.ClassName)
	}

	results := make([]*aggregation.Result, len(shards))
	eg := enterrors.NewErrorGroupWrapper(a.logger, params.ClassName)
	if a.config.MaxConcurrentShards > 0 {
		eg.SetLimit(a.config.MaxConcurrentShards)
	}
	for i, shard := range shards {
		i, shard := i, shard
		eg.Go(func() error {
			res, err := a.shard(ctx, params, shard)
			a.metrics.ShardAggregated(operationAggregate, err)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		}, shard)
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := aggregation.Merge(results, 0)
	aggregation.ApplyLimits(out, params.Tops())

	took := time.Since(start)
	a.metrics.ObserveAggregation(params.ClassName, operationAggregate, took)
	a.logger.WithField("action", "aggregate").
		WithField("class", params.ClassName).
		WithField("shards", len(shards)).
		WithField("took", took).
		Debug("aggregation completed")
	return out, nil
}

// shard computes the result of one shard. A segment compacted during the
// scan restarts it on a fresh searcher.
func (a *Aggregator) shard(ctx context.Context, params *aggregation.Params, shard string) (*aggregation.Result, error) {
	logger := a.logger.WithField("action", "aggregate_shard").
		WithField("class", params.ClassName).
		WithField("shard", shard)

	var res *aggregation.Result
	attempt := 0
	op := func() error {
		attempt++
		var err error
		res, err = a.shardOnce(ctx, params, shard, logger)
		if err == nil {
			return nil
		}
		if enterrors.IsSegmentGone(err) && attempt <= segmentRetries {
			a.metrics.SegmentRetry(operationAggregate)
			logger.WithField("attempt", attempt).WithError(err).Warn("segment gone, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewConstantBackOff(a.config.RetryInterval), segmentRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if enterrors.IsSegmentGone(err) {
			return nil, enterrors.NewUnableToComplete(errors.Wrapf(err, "shard %s", shard))
		}
		return nil, errors.Wrapf(err, "shard %s", shard)
	}
	return res, nil
}

func (a *Aggregator) shardOnce(ctx context.Context, params *aggregation.Params, shard string,
	logger logrus.FieldLogger,
) (*aggregation.Result, error) {
	searcher, err := a.store.Open(ctx, params.ClassName, shard)
	if err != nil {
		return nil, err
	}
	defer searcher.Close()

	b := &builder{
		params:   params,
		searcher: searcher,
		eval:     a.eval,
		grouping: grouping.Config{
			MaxBuckets: a.config.MaxBuckets,
			Location:   a.config.Location,
		},
		checkInterval: a.config.CheckInterval,
		logger:        logger,
	}
	start := time.Now()
	res, err := b.build(ctx)
	if err != nil {
		return nil, err
	}

	a.metrics.AddDocumentsScanned(params.ClassName, b.scanned)
	logger.WithField("documents", b.scanned).
		WithField("took", time.Since(start)).
		Debug("shard aggregated")
	return res, nil
}

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

package grouping

import (
	"time"

	"github.com/pkg/errors"

	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

type Config struct {
	MaxBuckets int
	// Location is the zone of date grouping without tz option.
	Location *time.Location
}

func (c Config) withDefaults() Config {
	if c.MaxBuckets <= 0 {
		c.MaxBuckets = DefaultMaxBuckets
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// New builds the collector of one grouping level of the table s.
func New(level *aggregation.GroupingStep, s segment.Searcher, eval inverted.FilterEvaluator,
	cfg Config,
) (Collector, error) {
	cfg = cfg.withDefaults()
	c, err := newStep(level, s, eval, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "group by %v", level.Path())
	}
	return c, nil
}

func newStep(step *aggregation.GroupingStep, s segment.Searcher, eval inverted.FilterEvaluator,
	cfg Config,
) (Collector, error) {
	prop, err := s.Class().GetProperty(step.Field)
	if err != nil {
		return nil, enterrors.NewConfigurationError("%v", err)
	}

	if step.Inner == nil {
		return newLeaf(step, prop, s, cfg)
	}

	if prop.DataType != schema.DataTypeLink {
		return nil, enterrors.NewConfigurationError("%s is not a link field", step.Field)
	}
	column, target, filter, err := linkTargets(step, s, eval)
	if err != nil {
		return nil, err
	}
	inner, err := newStep(step.Inner, target, eval, cfg)
	if err != nil {
		return nil, err
	}
	return NewLink(column, filter, inner), nil
}

func linkTargets(step *aggregation.GroupingStep, s segment.Searcher, eval inverted.FilterEvaluator,
) (segment.LinkColumn, segment.Searcher, *helpers.Bitset, error) {
	column, err := s.Links(step.Field)
	if err != nil {
		return nil, nil, nil, err
	}
	target, err := s.Table(column.Target())
	if err != nil {
		return nil, nil, nil, err
	}
	if step.Filter == "" {
		return column, target, nil, nil
	}
	filter, err := eval.Evaluate(target, step.Filter)
	if err != nil {
		return nil, nil, nil, err
	}
	return column, target, filter, nil
}

func newLeaf(step *aggregation.GroupingStep, prop *schema.Property, s segment.Searcher,
	cfg Config,
) (Collector, error) {
	if err := checkOptions(step, prop.DataType); err != nil {
		return nil, err
	}

	switch prop.DataType {
	case schema.DataTypeText:
		column, err := s.Values(prop.Name)
		if err != nil {
			return nil, err
		}
		return NewText(column), nil
	case schema.DataTypeID:
		return NewID(s.IDs(), s.DocCount()), nil
	case schema.DataTypeLink:
		column, err := s.Links(prop.Name)
		if err != nil {
			return nil, err
		}
		target, err := s.Table(column.Target())
		if err != nil {
			return nil, err
		}
		return NewLink(column, nil, NewID(target.IDs(), target.DocCount())), nil
	}

	column, err := s.Numeric(prop.Name)
	if err != nil {
		return nil, err
	}
	switch prop.DataType {
	case schema.DataTypeBoolean:
		return NewBoolean(column), nil
	case schema.DataTypeInt:
		if len(step.Buckets) > 0 {
			return NewBatch(column, step.Buckets)
		}
		return NewRange(column, cfg.MaxBuckets)
	case schema.DataTypeFloat, schema.DataTypeDouble:
		return NewBatch(column, step.Buckets)
	default:
		return newDate(step, column, s.DocCount(), cfg)
	}
}

func newDate(step *aggregation.GroupingStep, column segment.NumericColumn, docCount int,
	cfg Config,
) (Collector, error) {
	loc := cfg.Location
	if step.TimeZone != "" {
		var err error
		if loc, err = time.LoadLocation(step.TimeZone); err != nil {
			return nil, enterrors.NewConfigurationError("invalid time zone %q", step.TimeZone)
		}
	}

	switch {
	case len(step.Buckets) > 0:
		return NewBatch(column, step.Buckets)
	case step.DatePart != "":
		return NewDatePart(column, step.DatePart, loc), nil
	case step.DateUnit != "":
		return NewDate(column, docCount, step.DateUnit, loc, cfg.MaxBuckets)
	default:
		return NewDate(column, docCount, aggregation.DateUnitDay, loc, cfg.MaxBuckets)
	}
}

// checkOptions rejects field options the field type has no use for.
func checkOptions(step *aggregation.GroupingStep, dt schema.DataType) error {
	if dt != schema.DataTypeDate && (step.DateUnit != "" || step.DatePart != "" || step.TimeZone != "") {
		return enterrors.NewConfigurationError("date options on %s field %s", dt, step.Field)
	}
	if len(step.Buckets) > 0 && !dt.IsNumeric() {
		return enterrors.NewConfigurationError("bucket boundaries on %s field %s", dt, step.Field)
	}
	if len(step.Buckets) > 0 && dt == schema.DataTypeBoolean {
		return enterrors.NewConfigurationError("bucket boundaries on boolean field %s", step.Field)
	}
	return nil
}

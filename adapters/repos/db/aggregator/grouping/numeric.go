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
	"sort"
	"strconv"

	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

// DefaultMaxBuckets bounds the exact value range of numeric and date fields.
const DefaultMaxBuckets = 100000

// Boolean has a false and a true bucket.
type Boolean struct {
	column segment.NumericColumn
}

func NewBoolean(column segment.NumericColumn) *Boolean {
	return &Boolean{column: column}
}

func (c *Boolean) Size() int {
	return 2
}

func (c *Boolean) Collect(doc int, emit func(bucket int)) {
	for slot := 0; slot < c.column.ValueCount(doc); slot++ {
		if v, ok := c.column.Value(doc, slot); ok {
			if v != 0 {
				emit(1)
			} else {
				emit(0)
			}
		}
	}
}

func (c *Boolean) Name(bucket int) string {
	return strconv.FormatBool(bucket == 1)
}

func (c *Boolean) ID(bucket int) aggregation.GroupID {
	return aggregation.IntID(bucket)
}

func (c *Boolean) ReturnEmptyGroups() bool {
	return false
}

// Range has one bucket per integer between the smallest and the largest
// value of the column.
type Range struct {
	column segment.NumericColumn
	min    int64
	size   int
}

func NewRange(column segment.NumericColumn, maxBuckets int) (*Range, error) {
	lowest, highest, ok := column.Range()
	if !ok {
		return &Range{column: column}, nil
	}
	if span := highest - lowest; span < 0 || span >= int64(maxBuckets) {
		return nil, enterrors.NewConfigurationError(
			"value range %d to %d exceeds %d buckets, use buckets", lowest, highest, maxBuckets)
	}
	return &Range{column: column, min: lowest, size: int(highest-lowest) + 1}, nil
}

func (c *Range) Size() int {
	return c.size
}

func (c *Range) Collect(doc int, emit func(bucket int)) {
	for slot := 0; slot < c.column.ValueCount(doc); slot++ {
		if v, ok := c.column.Value(doc, slot); ok {
			emit(int(v - c.min))
		}
	}
}

func (c *Range) Name(bucket int) string {
	return strconv.FormatInt(c.min+int64(bucket), 10)
}

func (c *Range) ID(bucket int) aggregation.GroupID {
	return aggregation.IntID(c.min + int64(bucket))
}

func (c *Range) ReturnEmptyGroups() bool {
	return false
}

// Batch buckets values by ascending boundaries: below the first boundary,
// between two consecutive ones and from the last one on.
type Batch struct {
	column     segment.NumericColumn
	kind       aggregation.NumberKind
	labels     []string
	boundaries []float64
}

func NewBatch(column segment.NumericColumn, labels []string) (*Batch, error) {
	if len(labels) == 0 {
		return nil, enterrors.NewConfigurationError("missing bucket boundaries")
	}

	c := &Batch{column: column, kind: kindOf(column.DataType()), labels: labels}
	c.boundaries = make([]float64, len(labels))
	for i, label := range labels {
		b, err := parseBoundary(column.DataType(), label)
		if err != nil {
			return nil, err
		}
		if i > 0 && b <= c.boundaries[i-1] {
			return nil, enterrors.NewConfigurationError("bucket boundaries must ascend, %q after %q",
				label, labels[i-1])
		}
		c.boundaries[i] = b
	}
	return c, nil
}

func parseBoundary(dt schema.DataType, label string) (float64, error) {
	if dt == schema.DataTypeDate {
		millis, err := segment.EncodeValue(dt, label)
		if err != nil {
			return 0, enterrors.NewConfigurationError("invalid date boundary %q", label)
		}
		return float64(millis), nil
	}
	b, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 0, enterrors.NewConfigurationError("invalid bucket boundary %q", label)
	}
	return b, nil
}

func kindOf(dt schema.DataType) aggregation.NumberKind {
	switch dt {
	case schema.DataTypeFloat:
		return aggregation.KindFloat
	case schema.DataTypeDouble:
		return aggregation.KindDouble
	default:
		return aggregation.KindLong
	}
}

func (c *Batch) Size() int {
	return len(c.boundaries) + 1
}

func (c *Batch) Collect(doc int, emit func(bucket int)) {
	for slot := 0; slot < c.column.ValueCount(doc); slot++ {
		raw, ok := c.column.Value(doc, slot)
		if !ok {
			continue
		}
		v := c.kind.Decode(raw)
		emit(sort.Search(len(c.boundaries), func(i int) bool { return c.boundaries[i] > v }))
	}
}

func (c *Batch) Name(bucket int) string {
	switch bucket {
	case 0:
		return "< " + c.labels[0]
	case len(c.labels):
		return ">= " + c.labels[len(c.labels)-1]
	default:
		return c.labels[bucket-1] + " - " + c.labels[bucket]
	}
}

func (c *Batch) ID(bucket int) aggregation.GroupID {
	return aggregation.IntID(bucket)
}

func (c *Batch) ReturnEmptyGroups() bool {
	return true
}

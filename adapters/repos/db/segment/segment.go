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

// Package segment is the boundary to the columnar storage of a shard. A
// Searcher is a consistent, read-only view on one table of one shard.
package segment

import (
	"context"

	"github.com/weaviate/olapcore/entities/schema"
)

type Store interface {
	Open(ctx context.Context, class, shard string) (Searcher, error)
	// Shards lists the names of every shard holding the class, sorted.
	Shards(class string) []string
}

type Searcher interface {
	Shard() string
	Class() *schema.Class
	DocCount() int

	Numeric(field string) (NumericColumn, error)
	Values(field string) (TextColumn, error)
	Links(field string) (LinkColumn, error)
	IDs() IDColumn

	// Table opens another table of the same shard, as seen by this searcher.
	Table(class string) (Searcher, error)

	// Check returns an error matching errors.ErrSegmentGone if the segment
	// was compacted since the searcher was opened.
	Check() error

	SortedIDs() IDStream
	Close() error
}

// NumericColumn holds booleans, numbers and dates in their raw int64
// encoding. A document can hold several values, addressed by slot.
type NumericColumn interface {
	DataType() schema.DataType
	Value(doc, slot int) (int64, bool)
	ValueCount(doc int) int
	// Range is the smallest and the largest value of the column.
	Range() (min int64, max int64, ok bool)
}

// TextColumn maps documents to rows of a lexically sorted value table, so
// row order is text order.
type TextColumn interface {
	Rows(doc int) []int
	ValueCount(doc int) int
	Table() ValueTable
}

type ValueTable interface {
	Value(row int) string
	Size() int
}

// LinkColumn maps documents to rows of the target table.
type LinkColumn interface {
	Targets(doc int) []int
	ValueCount(doc int) int
	Target() string
}

// IDColumn ranks documents by their identifier. Table resolves a rank to
// the identifier.
type IDColumn interface {
	ID(doc int) string
	Rank(doc int) int
	Table() ValueTable
}

// IDStream iterates identifiers in ascending order.
type IDStream interface {
	Next() (string, bool)
	Err() error
}

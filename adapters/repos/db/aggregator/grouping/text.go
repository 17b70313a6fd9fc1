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
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
)

// Text has one bucket per row of the value table.
type Text struct {
	column segment.TextColumn
	table  segment.ValueTable
}

func NewText(column segment.TextColumn) *Text {
	return &Text{column: column, table: column.Table()}
}

func (c *Text) Size() int {
	return c.table.Size()
}

func (c *Text) Collect(doc int, emit func(bucket int)) {
	for _, row := range c.column.Rows(doc) {
		emit(row)
	}
}

func (c *Text) Name(bucket int) string {
	return c.table.Value(bucket)
}

func (c *Text) ID(bucket int) aggregation.GroupID {
	return aggregation.TextID(c.Name(bucket))
}

func (c *Text) ReturnEmptyGroups() bool {
	return false
}

// ID has one bucket per document, indexed by identifier rank.
type ID struct {
	ids   segment.IDColumn
	table segment.ValueTable
	size  int
}

func NewID(ids segment.IDColumn, docCount int) *ID {
	return &ID{ids: ids, table: ids.Table(), size: docCount}
}

func (c *ID) Size() int {
	return c.size
}

func (c *ID) Collect(doc int, emit func(bucket int)) {
	emit(c.ids.Rank(doc))
}

func (c *ID) Name(bucket int) string {
	return c.table.Value(bucket)
}

func (c *ID) ID(bucket int) aggregation.GroupID {
	return aggregation.TextID(c.Name(bucket))
}

func (c *ID) ReturnEmptyGroups() bool {
	return false
}

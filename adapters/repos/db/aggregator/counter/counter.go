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

// Package counter feeds the raw inputs of a document into metric values.
// Counters own no output storage, the caller hands in the value to add to.
package counter

import (
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
)

type Counter interface {
	Add(doc int, value aggregation.Value)
}

// Count adds 1 per document.
type Count struct{}

func NewCount() *Count {
	return &Count{}
}

func (c *Count) Add(doc int, value aggregation.Value) {
	value.Add(1)
}

// Num adds every value of a numeric field.
type Num struct {
	column segment.NumericColumn
}

func NewNum(column segment.NumericColumn) *Num {
	return &Num{column: column}
}

func (c *Num) Add(doc int, value aggregation.Value) {
	for slot, n := 0, c.column.ValueCount(doc); slot < n; slot++ {
		if raw, ok := c.column.Value(doc, slot); ok {
			value.Add(raw)
		}
	}
}

// NumCount adds the number of values a numeric field holds.
type NumCount struct {
	column segment.NumericColumn
}

func NewNumCount(column segment.NumericColumn) *NumCount {
	return &NumCount{column: column}
}

func (c *NumCount) Add(doc int, value aggregation.Value) {
	if n := c.column.ValueCount(doc); n > 0 {
		value.Add(int64(n))
	}
}

// Source is a multi-valued field whose values are references into a table,
// such as text rows, id ranks or link targets.
type Source interface {
	ValueCount(doc int) int
	Raw(doc, slot int) int64
}

// FieldCount adds the number of values of a field.
type FieldCount struct {
	source Source
}

func NewFieldCount(source Source) *FieldCount {
	return &FieldCount{source: source}
}

func (c *FieldCount) Add(doc int, value aggregation.Value) {
	if n := c.source.ValueCount(doc); n > 0 {
		value.Add(int64(n))
	}
}

// FieldValue adds every reference a field holds. The references are
// resolved once per bucket by the metric collector.
type FieldValue struct {
	source Source
}

func NewFieldValue(source Source) *FieldValue {
	return &FieldValue{source: source}
}

func (c *FieldValue) Add(doc int, value aggregation.Value) {
	for slot, n := 0, c.source.ValueCount(doc); slot < n; slot++ {
		value.Add(c.source.Raw(doc, slot))
	}
}

// Link follows a link field and hands every target that passes the
// optional filter to the inner counter.
type Link struct {
	column segment.LinkColumn
	filter *helpers.Bitset
	inner  Counter
}

func NewLink(column segment.LinkColumn, filter *helpers.Bitset, inner Counter) *Link {
	return &Link{column: column, filter: filter, inner: inner}
}

func (c *Link) Add(doc int, value aggregation.Value) {
	for _, target := range c.column.Targets(doc) {
		if c.filter != nil && !c.filter.Get(target) {
			continue
		}
		c.inner.Add(target, value)
	}
}

// Filtered only counts documents in the filter.
type Filtered struct {
	filter *helpers.Bitset
	inner  Counter
}

func NewFiltered(filter *helpers.Bitset, inner Counter) *Filtered {
	return &Filtered{filter: filter, inner: inner}
}

func (c *Filtered) Add(doc int, value aggregation.Value) {
	if c.filter.Get(doc) {
		c.inner.Add(doc, value)
	}
}

type textRows struct {
	column segment.TextColumn
}

// TextRows reads the value table rows of a text field.
func TextRows(column segment.TextColumn) Source {
	return textRows{column: column}
}

func (s textRows) ValueCount(doc int) int {
	return s.column.ValueCount(doc)
}

func (s textRows) Raw(doc, slot int) int64 {
	return int64(s.column.Rows(doc)[slot])
}

type idRanks struct {
	column segment.IDColumn
}

// IDRanks reads the rank of the document id, every document has one.
func IDRanks(column segment.IDColumn) Source {
	return idRanks{column: column}
}

func (s idRanks) ValueCount(int) int {
	return 1
}

func (s idRanks) Raw(doc, _ int) int64 {
	return int64(s.column.Rank(doc))
}

type linkRanks struct {
	column segment.LinkColumn
	target segment.IDColumn
}

// LinkRanks reads the id ranks of the targets of a link field.
func LinkRanks(column segment.LinkColumn, target segment.IDColumn) Source {
	return linkRanks{column: column, target: target}
}

func (s linkRanks) ValueCount(doc int) int {
	return s.column.ValueCount(doc)
}

func (s linkRanks) Raw(doc, slot int) int64 {
	return int64(s.target.Rank(s.column.Targets(doc)[slot]))
}

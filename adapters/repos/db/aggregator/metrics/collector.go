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

// Package metrics accumulates metric values per bucket.
//
// A Collector exists per (function, field type) pair. While a shard is
// scanned it accumulates cheap internal keys, e.g. value table rows for the
// distinct values of a text field. Convert resolves those keys once per
// final bucket.
package metrics

import (
	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/counter"
	"github.com/weaviate/olapcore/entities/aggregation"
)

type Collector interface {
	// NewValue returns an empty value of the variant the collector stores.
	NewValue() aggregation.Value
	// Count feeds the inputs of doc into value.
	Count(doc int, value aggregation.Value)
	SetSize(n int)
	// Add merges value into bucket.
	Add(bucket int, value aggregation.Value)
	// Get returns the value of bucket, an empty value if nothing was added.
	Get(bucket int) aggregation.Value
	Convert(value aggregation.Value) aggregation.Value
	// Fork returns a collector with the same configuration and no storage.
	Fork() Collector
}

type converter func(aggregation.Value) aggregation.Value

func identity(v aggregation.Value) aggregation.Value {
	return v
}

// valueCollector is the collector of every function over a field. The
// variants only differ in value, counter and conversion.
type valueCollector struct {
	newValue func() aggregation.Value
	counter  counter.Counter
	convert  converter
	values   []aggregation.Value
}

func newValueCollector(newValue func() aggregation.Value, c counter.Counter, convert converter) *valueCollector {
	if convert == nil {
		convert = identity
	}
	return &valueCollector{newValue: newValue, counter: c, convert: convert}
}

func (c *valueCollector) NewValue() aggregation.Value {
	return c.newValue()
}

func (c *valueCollector) Count(doc int, value aggregation.Value) {
	c.counter.Add(doc, value)
}

func (c *valueCollector) SetSize(n int) {
	c.values = make([]aggregation.Value, n)
}

func (c *valueCollector) Add(bucket int, value aggregation.Value) {
	if existing := c.values[bucket]; existing != nil {
		existing.Merge(value)
		return
	}
	c.values[bucket] = value.Clone()
}

func (c *valueCollector) Get(bucket int) aggregation.Value {
	if v := c.values[bucket]; v != nil {
		return v
	}
	return c.newValue()
}

func (c *valueCollector) Convert(value aggregation.Value) aggregation.Value {
	return c.convert(value)
}

func (c *valueCollector) Fork() Collector {
	return &valueCollector{newValue: c.newValue, counter: c.counter, convert: c.convert}
}

// binaryCollector composes the collectors of both operands and has no
// storage of its own.
type binaryCollector struct {
	op     byte
	first  Collector
	second Collector
}

func newBinaryCollector(op byte, first, second Collector) *binaryCollector {
	return &binaryCollector{op: op, first: first, second: second}
}

func (c *binaryCollector) NewValue() aggregation.Value {
	return aggregation.NewBinary(c.op, c.first.NewValue(), c.second.NewValue())
}

func (c *binaryCollector) Count(doc int, value aggregation.Value) {
	b := value.(*aggregation.Binary)
	c.first.Count(doc, b.First)
	c.second.Count(doc, b.Second)
}

func (c *binaryCollector) SetSize(n int) {
	c.first.SetSize(n)
	c.second.SetSize(n)
}

func (c *binaryCollector) Add(bucket int, value aggregation.Value) {
	b := value.(*aggregation.Binary)
	c.first.Add(bucket, b.First)
	c.second.Add(bucket, b.Second)
}

func (c *binaryCollector) Get(bucket int) aggregation.Value {
	return aggregation.NewBinary(c.op, c.first.Get(bucket), c.second.Get(bucket))
}

func (c *binaryCollector) Convert(value aggregation.Value) aggregation.Value {
	b := value.(*aggregation.Binary)
	return aggregation.NewBinary(c.op, c.first.Convert(b.First), c.second.Convert(b.Second))
}

func (c *binaryCollector) Fork() Collector {
	return newBinaryCollector(c.op, c.first.Fork(), c.second.Fork())
}

type constantCollector struct {
	value *aggregation.Constant
}

func newConstantCollector(v float64) *constantCollector {
	return &constantCollector{value: aggregation.NewConstant(v)}
}

func (c *constantCollector) NewValue() aggregation.Value { return c.value }
func (c *constantCollector) Count(int, aggregation.Value) {}
func (c *constantCollector) SetSize(int) {}
func (c *constantCollector) Add(int, aggregation.Value) {}
func (c *constantCollector) Get(int) aggregation.Value { return c.value }
func (c *constantCollector) Fork() Collector { return c }

func (c *constantCollector) Convert(value aggregation.Value) aggregation.Value {
	return value
}

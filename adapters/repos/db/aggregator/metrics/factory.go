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

package metrics

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/weaviate/olapcore/adapters/repos/db/aggregator/counter"
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

// field is a resolved metric path. Searcher is the table holding the last
// field, link wraps a counter of that table into the walk from the
// aggregated table.
type field struct {
	searcher segment.Searcher
	// prop is nil for a bare "*"
	prop   *schema.Property
	step   aggregation.PathStep
	filter *helpers.Bitset
	// targets is the table a link field points to
	targets segment.Searcher
	link    func(counter.Counter) counter.Counter
}

func (f *field) String() string {
	if f.prop == nil {
		return "*"
	}
	return string(f.prop.DataType) + " field " + f.prop.Name
}

func (f *field) dataType() schema.DataType {
	if f.prop == nil {
		return anyField
	}
	return f.prop.DataType
}

// anyField is the field type of COUNT(*)
const anyField schema.DataType = ""

type tableKey struct {
	function aggregation.Function
	dataType schema.DataType
}

type constructor func(f *field) (Collector, error)

var (
	table     map[tableKey]constructor
	tableOnce sync.Once
)

func lookup(fn aggregation.Function, dt schema.DataType) (constructor, bool) {
	tableOnce.Do(buildTable)
	c, ok := table[tableKey{function: fn, dataType: dt}]
	return c, ok
}

func buildTable() {
	table = map[tableKey]constructor{}
	numeric := []schema.DataType{
		schema.DataTypeBoolean, schema.DataTypeInt, schema.DataTypeFloat,
		schema.DataTypeDouble, schema.DataTypeDate,
	}
	references := []schema.DataType{schema.DataTypeText, schema.DataTypeID, schema.DataTypeLink}

	table[tableKey{aggregation.FunctionCount, anyField}] = countAll
	for _, dt := range numeric {
		table[tableKey{aggregation.FunctionCount, dt}] = countNumeric
		table[tableKey{aggregation.FunctionMin, dt}] = numericExtreme(false)
		table[tableKey{aggregation.FunctionMax, dt}] = numericExtreme(true)
		table[tableKey{aggregation.FunctionAverage, dt}] = average
		table[tableKey{aggregation.FunctionDistinct, dt}] = numericDistinct
		if dt != schema.DataTypeDate {
			table[tableKey{aggregation.FunctionSum, dt}] = sum
		}
	}
	for _, dt := range references {
		table[tableKey{aggregation.FunctionCount, dt}] = countReferences
		table[tableKey{aggregation.FunctionMin, dt}] = referenceExtreme(false)
		table[tableKey{aggregation.FunctionMax, dt}] = referenceExtreme(true)
		table[tableKey{aggregation.FunctionDistinct, dt}] = referenceDistinct
	}
}

// New builds the collector of a parsed metric against the aggregated table.
func New(m *aggregation.Metric, s segment.Searcher, eval inverted.FilterEvaluator) (Collector, error) {
	switch {
	case m.Constant != nil:
		return newConstantCollector(*m.Constant), nil
	case m.IsBinary():
		first, err := New(m.First, s, eval)
		if err != nil {
			return nil, err
		}
		second, err := New(m.Second, s, eval)
		if err != nil {
			return nil, err
		}
		return newBinaryCollector(m.Op, first, second), nil
	}

	f, err := resolve(m, s, eval)
	if err != nil {
		return nil, errors.Wrapf(err, "metric %s", m)
	}
	create, ok := lookup(m.Function, f.dataType())
	if !ok {
		return nil, enterrors.NewConfigurationError("function %s is not supported on %s",
			m.Function, f)
	}
	return create(f)
}

func resolve(m *aggregation.Metric, s segment.Searcher, eval inverted.FilterEvaluator) (*field, error) {
	f := &field{searcher: s, link: func(c counter.Counter) counter.Counter { return c }}
	if len(m.Path) == 0 {
		if m.Filter != "" {
			filter, err := eval.Evaluate(s, m.Filter)
			if err != nil {
				return nil, err
			}
			f.filter = filter
		}
		return f, nil
	}

	for i, step := range m.Path {
		prop, err := f.searcher.Class().GetProperty(step.Field)
		if err != nil {
			return nil, enterrors.NewConfigurationError("%v", err)
		}
		if step.Transitive && (prop.DataType != schema.DataTypeLink || prop.Target != f.searcher.Class().Name) {
			return nil, enterrors.NewConfigurationError(
				"transitive step %s must be a link to %s", step.Field, f.searcher.Class().Name)
		}

		if i == len(m.Path)-1 {
			f.prop, f.step = prop, step
			break
		}

		if prop.DataType != schema.DataTypeLink {
			return nil, enterrors.NewConfigurationError("%s is not a link field", step.Field)
		}
		column, err := f.searcher.Links(step.Field)
		if err != nil {
			return nil, err
		}
		target, err := f.searcher.Table(column.Target())
		if err != nil {
			return nil, err
		}
		outer, transitive, depth := f.link, step.Transitive, step.MaxDepth()
		f.link = func(c counter.Counter) counter.Counter {
			if transitive {
				return outer(counter.NewTransitiveLink(column, depth, nil, c))
			}
			return outer(counter.NewLink(column, nil, c))
		}
		f.searcher = target
	}

	filtered := f.searcher
	if f.prop.DataType == schema.DataTypeLink {
		column, err := f.searcher.Links(f.prop.Name)
		if err != nil {
			return nil, err
		}
		if f.targets, err = f.searcher.Table(column.Target()); err != nil {
			return nil, err
		}
		filtered = f.targets
	}
	if m.Filter != "" {
		filter, err := eval.Evaluate(filtered, m.Filter)
		if err != nil {
			return nil, err
		}
		f.filter = filter
	}
	return f, nil
}

// wrap applies the inline filter of a non-link field and the link walk.
func (f *field) wrap(c counter.Counter) counter.Counter {
	if f.filter != nil {
		c = counter.NewFiltered(f.filter, c)
	}
	return f.link(c)
}

func kindOf(dt schema.DataType) aggregation.NumberKind {
	switch dt {
	case schema.DataTypeBoolean:
		return aggregation.KindBoolean
	case schema.DataTypeFloat:
		return aggregation.KindFloat
	case schema.DataTypeDouble:
		return aggregation.KindDouble
	case schema.DataTypeDate:
		return aggregation.KindDate
	default:
		return aggregation.KindLong
	}
}

func countAll(f *field) (Collector, error) {
	return newValueCollector(newCount, f.wrap(counter.NewCount()), nil), nil
}

func newCount() aggregation.Value {
	return aggregation.NewCount()
}

func countNumeric(f *field) (Collector, error) {
	column, err := f.searcher.Numeric(f.prop.Name)
	if err != nil {
		return nil, err
	}
	return newValueCollector(newCount, f.wrap(counter.NewNumCount(column)), nil), nil
}

func numericCounter(f *field) (counter.Counter, aggregation.NumberKind, error) {
	column, err := f.searcher.Numeric(f.prop.Name)
	if err != nil {
		return nil, 0, err
	}
	return f.wrap(counter.NewNum(column)), kindOf(f.prop.DataType), nil
}

func sum(f *field) (Collector, error) {
	c, kind, err := numericCounter(f)
	if err != nil {
		return nil, err
	}
	if kind == aggregation.KindBoolean {
		kind = aggregation.KindLong
	}
	return newValueCollector(func() aggregation.Value { return aggregation.NewSum(kind) }, c, nil), nil
}

func numericExtreme(highest bool) constructor {
	return func(f *field) (Collector, error) {
		c, kind, err := numericCounter(f)
		if err != nil {
			return nil, err
		}
		newValue := func() aggregation.Value { return aggregation.NewMin(kind) }
		if highest {
			newValue = func() aggregation.Value { return aggregation.NewMax(kind) }
		}
		return newValueCollector(newValue, c, nil), nil
	}
}

func average(f *field) (Collector, error) {
	c, kind, err := numericCounter(f)
	if err != nil {
		return nil, err
	}
	return newValueCollector(func() aggregation.Value { return aggregation.NewAverage(kind) }, c, nil), nil
}

func numericDistinct(f *field) (Collector, error) {
	c, kind, err := numericCounter(f)
	if err != nil {
		return nil, err
	}
	return newValueCollector(func() aggregation.Value { return aggregation.NewDistinct(kind) }, c, nil), nil
}

// references returns the counter feeding the references of a text, id or
// link field and the table resolving them.
func (f *field) references(count bool) (counter.Counter, segment.ValueTable, error) {
	switch f.prop.DataType {
	case schema.DataTypeText:
		column, err := f.searcher.Values(f.prop.Name)
		if err != nil {
			return nil, nil, err
		}
		if count {
			return f.wrap(counter.NewFieldCount(counter.TextRows(column))), nil, nil
		}
		return f.wrap(counter.NewFieldValue(counter.TextRows(column))), column.Table(), nil
	case schema.DataTypeID:
		ids := f.searcher.IDs()
		if count {
			return f.wrap(counter.NewCount()), nil, nil
		}
		return f.wrap(counter.NewFieldValue(counter.IDRanks(ids))), ids.Table(), nil
	default:
		return f.linkReferences(count)
	}
}

func (f *field) linkReferences(count bool) (counter.Counter, segment.ValueTable, error) {
	column, err := f.searcher.Links(f.prop.Name)
	if err != nil {
		return nil, nil, err
	}
	ids := f.targets.IDs()

	var c counter.Counter
	switch {
	case f.step.Transitive && count:
		c = counter.NewTransitiveLinkCount(column, f.step.MaxDepth(), f.filter)
	case f.step.Transitive:
		c = counter.NewTransitiveLinkValue(column, ids, f.step.MaxDepth(), f.filter)
	case f.filter != nil && count:
		c = counter.NewLink(column, f.filter, counter.NewCount())
	case f.filter != nil:
		c = counter.NewLink(column, f.filter, counter.NewFieldValue(counter.IDRanks(ids)))
	case count:
		c = counter.NewFieldCount(counter.LinkRanks(column, ids))
	default:
		c = counter.NewFieldValue(counter.LinkRanks(column, ids))
	}
	return f.link(c), ids.Table(), nil
}

func countReferences(f *field) (Collector, error) {
	c, _, err := f.references(true)
	if err != nil {
		return nil, err
	}
	return newValueCollector(newCount, c, nil), nil
}

func referenceExtreme(highest bool) constructor {
	return func(f *field) (Collector, error) {
		c, values, err := f.references(false)
		if err != nil {
			return nil, err
		}
		newValue := func() aggregation.Value { return aggregation.NewTextMin() }
		if highest {
			newValue = func() aggregation.Value { return aggregation.NewTextMax() }
		}
		return newValueCollector(newValue, c, resolveExtreme(highest, values)), nil
	}
}

func referenceDistinct(f *field) (Collector, error) {
	c, values, err := f.references(false)
	if err != nil {
		return nil, err
	}
	newValue := func() aggregation.Value { return aggregation.NewDistinct(aggregation.KindLong) }
	return newValueCollector(newValue, c, resolveDistinct(values)), nil
}

// resolveExtreme replaces the winning ordinal by its text.
func resolveExtreme(highest bool, values segment.ValueTable) converter {
	return func(v aggregation.Value) aggregation.Value {
		t := v.(*aggregation.TextExtreme)
		if t.IsResolved() {
			return t
		}
		ordinal, ok := t.Ordinal()
		if !ok {
			return t
		}
		return aggregation.NewResolvedTextExtreme(highest, values.Value(int(ordinal)))
	}
}

// resolveDistinct looks up every distinct reference in ascending row order.
func resolveDistinct(values segment.ValueTable) converter {
	return func(v aggregation.Value) aggregation.Value {
		d := v.(*aggregation.Distinct)
		raw := d.Raw()
		if len(raw) == 0 {
			return d
		}
		resolved := make([]string, len(raw))
		for i, row := range raw {
			resolved[i] = values.Value(int(row))
		}
		return aggregation.NewResolvedDistinct(resolved)
	}
}

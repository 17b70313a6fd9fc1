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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

var (
	customerClass = &schema.Class{
		Name: "Customer",
		Properties: []*schema.Property{
			{Name: "Region", DataType: schema.DataTypeText},
		},
	}
	orderClass = &schema.Class{
		Name: "Order",
		Properties: []*schema.Property{
			{Name: "Amount", DataType: schema.DataTypeInt},
			{Name: "Price", DataType: schema.DataTypeDouble},
			{Name: "Tags", DataType: schema.DataTypeText},
			{Name: "Customer", DataType: schema.DataTypeLink, Target: "Customer"},
		},
	}
)

func orderSearcher(t *testing.T) segment.Searcher {
	shard, err := segment.NewShardBuilder("s").
		Add(customerClass,
			segment.Document{ID: "c1", Fields: map[string]interface{}{"Region": "East"}},
			segment.Document{ID: "c2", Fields: map[string]interface{}{"Region": "West"}},
			segment.Document{ID: "c3", Fields: map[string]interface{}{"Region": "East"}},
		).
		Add(orderClass,
			segment.Document{ID: "o1", Fields: map[string]interface{}{
				"Amount": int64(10), "Price": 2.5, "Tags": []string{"red", "blue"}, "Customer": "c1",
			}},
			segment.Document{ID: "o2", Fields: map[string]interface{}{
				"Amount": []int64{3, 4}, "Tags": "red", "Customer": []string{"c1", "c2"},
			}},
			segment.Document{ID: "o3", Fields: map[string]interface{}{
				"Amount": int64(5), "Price": 0.5, "Tags": "green",
			}},
		).
		Build()
	require.Nil(t, err)

	store := segment.NewMemory()
	store.Put(shard)
	s, err := store.Open(context.Background(), "Order", "s")
	require.Nil(t, err)
	return s
}

func newSet(t *testing.T, s segment.Searcher, expr string) *Set {
	parsed, err := aggregation.ParseMetrics(expr)
	require.Nil(t, err)

	collectors := make([]Collector, len(parsed))
	for i, m := range parsed {
		collectors[i], err = New(m, s, inverted.NewEvaluator())
		require.Nil(t, err)
	}
	return NewSet(collectors)
}

// aggregate adds docs to a single bucket and returns its formatted values.
func aggregate(t *testing.T, s segment.Searcher, expr string, docs ...int) []string {
	set := newSet(t, s, expr)
	require.Nil(t, set.SetSize(1))

	values := set.NewValueSet()
	for _, doc := range docs {
		set.Count(doc, values)
		set.Add(doc, 0, values)
		set.AddDoc(doc, values)
	}
	return set.Get(0).Strings()
}

func TestSet(t *testing.T) {
	s := orderSearcher(t)

	t.Run("buckets, null group and summary", func(t *testing.T) {
		set := newSet(t, s, "COUNT(*),SUM(Amount)")
		require.Nil(t, set.SetSize(2))
		values := set.NewValueSet()

		set.Count(0, values)
		assert.True(t, set.Add(0, 0, values))
		assert.False(t, set.Add(0, 0, values), "a document is added to a bucket once")
		assert.True(t, set.Add(0, 1, values))
		set.AddDoc(0, values)

		set.Count(1, values)
		set.AddDoc(1, values)

		set.Count(2, values)
		set.Add(2, 0, values)
		set.AddDoc(2, values)

		assert.Equal(t, []string{"2", "15"}, set.Get(0).Strings())
		assert.Equal(t, []string{"1", "10"}, set.Get(1).Strings())
		null, ok := set.Null()
		require.True(t, ok)
		assert.Equal(t, []string{"1", "7"}, null.Strings())
		assert.Equal(t, []string{"3", "22"}, set.Summary().Strings())
		assert.True(t, set.Touched(1))
	})

	t.Run("no null group if every document hit a bucket", func(t *testing.T) {
		set := newSet(t, s, "COUNT(*)")
		require.Nil(t, set.SetSize(1))
		values := set.NewValueSet()
		set.Count(0, values)
		set.Add(0, 0, values)
		set.AddDoc(0, values)

		_, ok := set.Null()
		assert.False(t, ok)
	})

	t.Run("untouched buckets hold empty values", func(t *testing.T) {
		set := newSet(t, s, "COUNT(*),MIN(Amount)")
		require.Nil(t, set.SetSize(3))
		assert.False(t, set.Touched(2))
		v := set.Get(2)
		assert.Equal(t, "0", v.Strings()[0])
		assert.True(t, v[1].IsDegenerate())
	})

	t.Run("fields of one level must have the same size", func(t *testing.T) {
		set := newSet(t, s, "COUNT(*)")
		require.Nil(t, set.SetSize(4))
		require.Nil(t, set.SetSize(4))
		err := set.SetSize(5)
		require.NotNil(t, err)
		assert.True(t, enterrors.IsConfiguration(err))
	})

	t.Run("fork starts empty", func(t *testing.T) {
		set := newSet(t, s, "SUM(Amount)")
		require.Nil(t, set.SetSize(1))
		values := set.NewValueSet()
		set.Count(0, values)
		set.Add(0, 0, values)

		fork := set.Fork()
		assert.Equal(t, -1, fork.Size())
		require.Nil(t, fork.SetSize(1))
		assert.Equal(t, []string{"0"}, fork.Get(0).Strings())
	})
}

func TestCollectors(t *testing.T) {
	s := orderSearcher(t)

	tests := []struct {
		name     string
		expr     string
		docs     []int
		expected []string
	}{
		{name: "count all", expr: "COUNT(*)", docs: []int{0, 1, 2}, expected: []string{"3"}},
		{name: "count values", expr: "COUNT(Amount),COUNT(Price)", docs: []int{0, 1, 2}, expected: []string{"4", "2"}},
		{name: "numeric", expr: "SUM(Amount),MIN(Amount),MAX(Amount)", docs: []int{0, 1}, expected: []string{"17", "3", "10"}},
		{name: "average", expr: "AVERAGE(Amount)", docs: []int{1, 2}, expected: []string{"4"}},
		{name: "double", expr: "SUM(Price),MAX(Price)", docs: []int{0, 2}, expected: []string{"3", "2.5"}},
		{name: "distinct numbers", expr: "DISTINCT(Amount)", docs: []int{0, 1, 2}, expected: []string{"4"}},
		{name: "count text values", expr: "COUNT(Tags)", docs: []int{0, 1, 2}, expected: []string{"4"}},
		{name: "distinct text", expr: "DISTINCT(Tags)", docs: []int{0, 1}, expected: []string{"2"}},
		{name: "text extremes", expr: "MIN(Tags),MAX(Tags)", docs: []int{0, 2}, expected: []string{"blue", "red"}},
		{name: "id extremes", expr: "MIN(id),MAX(id),COUNT(id)", docs: []int{1, 2}, expected: []string{"o2", "o3", "2"}},
		{name: "count links", expr: "COUNT(Customer)", docs: []int{0, 1, 2}, expected: []string{"3"}},
		{name: "filtered links", expr: "COUNT(Customer|Region=East)", docs: []int{1}, expected: []string{"1"}},
		{name: "link extremes", expr: "MAX(Customer)", docs: []int{0, 1}, expected: []string{"c2"}},
		{name: "through a link", expr: "DISTINCT(Customer.Region),COUNT(Customer.Region)", docs: []int{0, 1}, expected: []string{"2", "3"}},
		{name: "inline filter", expr: "COUNT(*|Amount>4)", docs: []int{0, 1, 2}, expected: []string{"2"}},
		{name: "expression", expr: "SUM(Amount)/COUNT(*)", docs: []int{0, 2}, expected: []string{"7.5"}},
		{name: "constant", expr: "SUM(Amount)+1", docs: []int{2}, expected: []string{"6"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, aggregate(t, s, test.expr, test.docs...))
		})
	}
}

func TestDistinctResolution(t *testing.T) {
	s := orderSearcher(t)
	set := newSet(t, s, "DISTINCT(Tags)")
	require.Nil(t, set.SetSize(1))
	values := set.NewValueSet()
	for doc := 0; doc < 3; doc++ {
		set.Count(doc, values)
		set.Add(doc, 0, values)
	}

	d := set.Get(0)[0].(*aggregation.Distinct)
	assert.Equal(t, []string{"blue", "green", "red"}, d.Values())
	assert.Empty(t, d.Raw())

	// a resolved value merges by text with another shard's value
	other := aggregation.NewResolvedDistinct([]string{"red", "yellow"})
	d.Merge(other)
	assert.Equal(t, 4, d.Size())
}

func TestNewErrors(t *testing.T) {
	s := orderSearcher(t)

	tests := []struct {
		name string
		expr string
	}{
		{name: "sum of text", expr: "SUM(Tags)"},
		{name: "average of links", expr: "AVERAGE(Customer)"},
		{name: "unknown field", expr: "SUM(Weight)"},
		{name: "path through a non link", expr: "COUNT(Amount.Region)"},
		{name: "transitive step to another class", expr: "COUNT(Customer*2)"},
		{name: "invalid inline filter", expr: "COUNT(*|Missing=1)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parsed, err := aggregation.ParseMetrics(test.expr)
			require.Nil(t, err)
			_, err = New(parsed[0], s, inverted.NewEvaluator())
			require.NotNil(t, err)
			assert.True(t, enterrors.IsConfiguration(err))
		})
	}
}

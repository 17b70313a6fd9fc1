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

package aggregator

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
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
			{Name: "Status", DataType: schema.DataTypeText},
			{Name: "Note", DataType: schema.DataTypeText},
			{Name: "Created", DataType: schema.DataTypeDate},
			{Name: "Customer", DataType: schema.DataTypeLink, Target: "Customer"},
		},
	}
)

func order(id string, amount int64, status, created string, fields ...interface{}) segment.Document {
	doc := segment.Document{ID: id, Fields: map[string]interface{}{
		"Amount": amount, "Status": status, "Created": created,
	}}
	for i := 0; i+1 < len(fields); i += 2 {
		doc.Fields[fields[i].(string)] = fields[i+1]
	}
	return doc
}

// orderStore holds two shards:
//
//	a: o1 100 East, o2 50 West, o3 7 without customer
//	b: o4 20 East, o5 5 North
func orderStore(t *testing.T) *segment.Memory {
	a, err := segment.NewShardBuilder("a").
		Add(customerClass,
			segment.Document{ID: "c1", Fields: map[string]interface{}{"Region": "East"}},
			segment.Document{ID: "c2", Fields: map[string]interface{}{"Region": "West"}},
		).
		Add(orderClass,
			order("o1", 100, "open", "2024-03-04", "Customer", "c1", "Note", "Big Order"),
			order("o2", 50, "closed", "2024-03-06", "Customer", "c2", "Note", "big deal"),
			order("o3", 7, "open", "2024-03-12"),
		).
		Build()
	require.Nil(t, err)

	b, err := segment.NewShardBuilder("b").
		Add(customerClass,
			segment.Document{ID: "c3", Fields: map[string]interface{}{"Region": "East"}},
			segment.Document{ID: "c4", Fields: map[string]interface{}{"Region": "North"}},
		).
		Add(orderClass,
			order("o4", 20, "open", "2024-03-05", "Customer", "c3"),
			order("o5", 5, "closed", "2024-03-13", "Customer", "c4"),
		).
		Build()
	require.Nil(t, err)

	store := segment.NewMemory()
	store.Put(a)
	store.Put(b)
	return store
}

func newAggregator(store segment.Store) *Aggregator {
	logger, _ := test.NewNullLogger()
	return New(store, inverted.NewEvaluator(), Config{MaxConcurrentShards: 2}, logger, nil)
}

func aggregate(t *testing.T, store segment.Store, values url.Values) (*aggregation.Result, error) {
	params, err := aggregation.ParseParams("Order", values)
	require.Nil(t, err)
	return newAggregator(store).Aggregate(context.Background(), params)
}

// render prints every group as name=metrics, the null group as <null>.
func render(res *aggregation.Result) []string {
	out := make([]string, len(res.Groups))
	for i, g := range res.Groups {
		name := "<null>"
		if g.Name != nil {
			name = *g.Name
		}
		out[i] = name + "=" + strings.Join(g.Metrics.Strings(), ",")
		if g.Inner != nil {
			out[i] += fmt.Sprintf("%v", render(g.Inner))
		}
	}
	return out
}

func TestAggregate(t *testing.T) {
	store := orderStore(t)

	tests := []struct {
		name      string
		values    url.Values
		documents int
		summary   []string
		groups    []string
	}{
		{
			name:      "ungrouped",
			values:    url.Values{"m": {"SUM(Amount),COUNT(*)"}},
			documents: 5,
			summary:   []string{"182", "5"},
			groups:    []string{},
		},
		{
			name:      "sum by region across shards",
			values:    url.Values{"m": {"SUM(Amount)"}, "f": {"Customer.Region"}},
			documents: 5,
			summary:   []string{"182"},
			groups:    []string{"<null>=7", "East=120", "North=5", "West=50"},
		},
		{
			name:      "top region",
			values:    url.Values{"m": {"SUM(Amount)"}, "f": {"Customer.Region[top=1]"}},
			documents: 5,
			summary:   []string{"182"},
			groups:    []string{"East=120"},
		},
		{
			name:      "bottom regions",
			values:    url.Values{"m": {"SUM(Amount)"}, "f": {"Customer.Region[top=-2]"}},
			documents: 5,
			summary:   []string{"182"},
			groups:    []string{"North=5", "<null>=7"},
		},
		{
			name:      "nested",
			values:    url.Values{"m": {"SUM(Amount)"}, "cf": {"Customer.Region,Status"}},
			documents: 5,
			summary:   []string{"182"},
			groups: []string{
				"<null>=7", "East=120[open=120]", "North=5[closed=5]", "West=50[closed=50]",
			},
		},
		{
			name:      "one grouping for several parts",
			values:    url.Values{"m": {"SUM(Amount)"}, "q": {"Amount>=50", "Amount<10"}, "f": {"Customer.Region"}},
			documents: 4,
			summary:   []string{"162"},
			groups:    []string{"<null>=7", "East=100", "North=5", "West=50"},
		},
		{
			name:      "days collapse into weeks",
			values:    url.Values{"m": {"COUNT(*),SUM(Amount)"}, "f": {"Created[date=WEEK]"}},
			documents: 5,
			summary:   []string{"5", "182"},
			groups:    []string{"2024-03-04=3,170", "2024-03-11=2,12"},
		},
		{
			name:      "tokenized and lower cased",
			values:    url.Values{"m": {"COUNT(*)"}, "f": {"Note[tokenize;case=lower]"}},
			documents: 5,
			summary:   []string{"5"},
			groups:    []string{"<null>=3", "big=2", "deal=1", "order=1"},
		},
		{
			name:      "excluded names",
			values:    url.Values{"m": {"COUNT(*)"}, "f": {"Status[exclude=closed]"}},
			documents: 5,
			summary:   []string{"5"},
			groups:    []string{"open=3"},
		},
		{
			name:      "distinct regions per status",
			values:    url.Values{"m": {"DISTINCT(Customer.Region)"}, "f": {"Status"}},
			documents: 5,
			summary:   []string{"3"},
			groups:    []string{"closed=2", "open=1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := aggregate(t, store, tt.values)
			require.Nil(t, err)
			assert.Equal(t, tt.documents, res.DocumentsCount)
			require.NotNil(t, res.Summary)
			assert.Equal(t, tt.summary, res.Summary.Metrics.Strings())
			assert.Equal(t, tt.groups, render(res))
		})
	}
}

func TestAggregateCountOnly(t *testing.T) {
	item := &schema.Class{Name: "Item", Properties: []*schema.Property{
		{Name: "Size", DataType: schema.DataTypeInt},
	}}
	store := segment.NewMemory()
	for name, count := range map[string]int{"a": 10, "b": 15} {
		docs := make([]segment.Document, count)
		for i := range docs {
			docs[i] = segment.Document{Fields: map[string]interface{}{"Size": int64(i)}}
		}
		shard, err := segment.NewShardBuilder(name).Add(item, docs...).Build()
		require.Nil(t, err)
		store.Put(shard)
	}

	agg := newAggregator(store)

	t.Run("all documents", func(t *testing.T) {
		params, err := aggregation.ParseParams("Item", url.Values{"m": {"COUNT(*)"}})
		require.Nil(t, err)
		res, err := agg.Aggregate(context.Background(), params)
		require.Nil(t, err)
		assert.Equal(t, 25, res.DocumentsCount)
		assert.Equal(t, []string{"25"}, res.Summary.Metrics.Strings())
		assert.Empty(t, res.Groups)
	})

	t.Run("parts are united", func(t *testing.T) {
		params, err := aggregation.ParseParams("Item", url.Values{
			"m": {"count(*)"}, "q": {"Size<2", "Size<3", "Size>=12"},
		})
		require.Nil(t, err)
		res, err := agg.Aggregate(context.Background(), params)
		require.Nil(t, err)
		// a: 0,1,2; b: 0,1,2,12,13,14
		assert.Equal(t, 9, res.DocumentsCount)
	})
}

// compactingStore compacts a shard right after opening it, for as long as
// compactions remain.
type compactingStore struct {
	*segment.Memory

	mu          sync.Mutex
	compactions int
	opens       int
}

func (s *compactingStore) Open(ctx context.Context, class, shard string) (segment.Searcher, error) {
	searcher, err := s.Memory.Open(ctx, class, shard)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	if s.compactions > 0 {
		s.compactions--
		if err := s.Memory.Compact(shard); err != nil {
			return nil, err
		}
	}
	return searcher, nil
}

func TestAggregateRetries(t *testing.T) {
	values := url.Values{"m": {"SUM(Amount)"}, "f": {"Customer.Region"}}

	t.Run("a compacted segment is scanned again", func(t *testing.T) {
		store := &compactingStore{Memory: orderStore(t), compactions: 1}
		res, err := aggregate(t, store, values)
		require.Nil(t, err)
		assert.Equal(t, []string{"<null>=7", "East=120", "North=5", "West=50"}, render(res))
		assert.Equal(t, 3, store.opens)
	})

	t.Run("gives up after one retry", func(t *testing.T) {
		store := &compactingStore{Memory: orderStore(t), compactions: 100}
		_, err := aggregate(t, store, values)
		require.NotNil(t, err)
		assert.True(t, errors.Is(err, enterrors.ErrUnableToComplete))
		assert.True(t, enterrors.IsSegmentGone(err))
		assert.Equal(t, 4, store.opens)
	})
}

func TestAggregateErrors(t *testing.T) {
	store := orderStore(t)

	t.Run("unsupported function", func(t *testing.T) {
		_, err := aggregate(t, store, url.Values{"m": {"SUM(Status)"}})
		require.NotNil(t, err)
		assert.True(t, enterrors.IsConfiguration(err))
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := aggregate(t, store, url.Values{"m": {"COUNT(*)"}, "q": {"Missing=1"}})
		require.NotNil(t, err)
		assert.True(t, enterrors.IsConfiguration(err))
	})

	t.Run("parts grouped by fields of different sizes", func(t *testing.T) {
		_, err := aggregate(t, store, url.Values{
			"m": {"COUNT(*)"}, "q": {"*", "*"}, "f": {"Status", "id"},
		})
		require.NotNil(t, err)
		assert.True(t, enterrors.IsConfiguration(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		params, err := aggregation.ParseParams("Order", url.Values{"m": {"COUNT(*)"}})
		require.Nil(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = newAggregator(store).Aggregate(ctx, params)
		require.NotNil(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

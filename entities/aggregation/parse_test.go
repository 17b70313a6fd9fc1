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

package aggregation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enterrors "github.com/weaviate/olapcore/entities/errors"
)

func TestParseMetrics(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{in: "COUNT(*)", expected: []string{"COUNT(*)"}},
		{in: "count(*)", expected: []string{"COUNT(*)"}},
		{in: "AVERAGE(Price), SUM(Amount)", expected: []string{"AVERAGE(Price)", "SUM(Amount)"}},
		{in: "SUM(Amount)/COUNT(*)", expected: []string{"(SUM(Amount)/COUNT(*))"}},
		{in: "1 + 2 * MAX(Price)", expected: []string{"(1+(2*MAX(Price)))"}},
		{in: "(1 + 2) * MAX(Price)", expected: []string{"((1+2)*MAX(Price))"}},
		{in: "DISTINCT(Customer.Region)", expected: []string{"DISTINCT(Customer.Region)"}},
		{in: "COUNT(Parent*)", expected: []string{"COUNT(Parent*)"}},
		{in: "COUNT(Parent*3.Name)", expected: []string{"COUNT(Parent*3.Name)"}},
		{in: "COUNT(*|Amount>10)", expected: []string{"COUNT(*|Amount>10)"}},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			metrics, err := ParseMetrics(test.in)
			require.Nil(t, err)
			out := make([]string, len(metrics))
			for i, m := range metrics {
				out[i] = m.String()
			}
			assert.Equal(t, test.expected, out)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{
			"MEDIAN(Price)",
			"SUM(*)",
			"SUM(Price",
			"SUM(Price) +",
			"SUM(Price) SUM(Amount)",
			"SUM(Pri-ce)",
			",",
		} {
			_, err := ParseMetrics(in)
			assert.NotNil(t, err, in)
		}
	})
}

func TestCountAllMatchesByValue(t *testing.T) {
	// the function name is built at runtime so it can not be the same
	// string constant as FunctionCount
	name := string([]byte{'c', 'o', 'u', 'n', 't'})

	metrics, err := ParseMetrics(name + "(*)")
	require.Nil(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, FunctionCount, metrics[0].Function)
	assert.True(t, metrics[0].IsCountAll())

	params, err := ParseParams("Orders", url.Values{"m": {name + "(*)"}})
	require.Nil(t, err)
	assert.True(t, params.IsCountOnly())
}

func TestParseGrouping(t *testing.T) {
	t.Run("single level with options", func(t *testing.T) {
		chain, err := ParseGrouping("Region[top=3;case=lower;tokenize;exclude=a|b]", false)
		require.Nil(t, err)
		require.Len(t, chain, 1)
		level := chain[0]
		assert.Equal(t, "Region", level.Field)
		assert.Equal(t, 3, level.Top)
		assert.Equal(t, CaseLower, level.Case)
		assert.True(t, level.Tokenize)
		assert.Equal(t, []string{"a", "b"}, level.Exclude)
	})

	t.Run("link path with target filter", func(t *testing.T) {
		chain, err := ParseGrouping("Customer.Created[date=week;filter=Active=true;top=-2]", false)
		require.Nil(t, err)
		level := chain[0]
		assert.Equal(t, []string{"Customer", "Created"}, level.Path())
		assert.Equal(t, "Active=true", level.Filter)
		assert.Equal(t, -2, level.Top)
		assert.Equal(t, DateUnitWeek, level.Leaf().DateUnit)
	})

	t.Run("composite levels", func(t *testing.T) {
		chain, err := ParseGrouping("Created[part=month_of_year], Price[buckets=10|100]", true)
		require.Nil(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, DatePartMonthOfYear, chain[0].DatePart)
		assert.Equal(t, []string{"10", "100"}, chain[1].Buckets)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{
			"Region[case=title]",
			"Region[date=fortnight]",
			"Region[part=week_of_year]",
			"Region[top=many]",
			"Region[color=red]",
			"Region[filter=x]",
			"Created[date=DAY;part=YEAR]",
			"Region[top=1",
			"Re gion",
		} {
			_, err := ParseGrouping(in, false)
			require.NotNil(t, err, in)
			assert.True(t, enterrors.IsConfiguration(err), in)
		}
	})
}

func TestParseParams(t *testing.T) {
	t.Run("defaults to one part matching everything", func(t *testing.T) {
		params, err := ParseParams("Orders", url.Values{"m": {"SUM(Amount)"}, "f": {"Region"}})
		require.Nil(t, err)
		require.Len(t, params.Parts, 1)
		assert.Equal(t, "*", params.Parts[0].Filter)
		assert.Equal(t, 1, params.Depth())
		assert.False(t, params.IsCountOnly())
	})

	t.Run("one group shared by every filter", func(t *testing.T) {
		params, err := ParseParams("Orders", url.Values{
			"m": {"COUNT(*)"},
			"q": {"Amount>10", "Amount<2"},
			"f": {"Region[top=1]"},
		})
		require.Nil(t, err)
		require.Len(t, params.Parts, 2)
		assert.NotSame(t, params.Parts[0].Grouping[0], params.Parts[1].Grouping[0])
		assert.Equal(t, []int{1}, params.Tops())
	})

	t.Run("composite group", func(t *testing.T) {
		params, err := ParseParams("Orders", url.Values{
			"m":  {"COUNT(*)"},
			"cf": {"Region[top=2],Created[date=YEAR;top=1]"},
		})
		require.Nil(t, err)
		assert.Equal(t, []int{2, 1}, params.Tops())
	})

	tests := []struct {
		name   string
		values url.Values
	}{
		{name: "missing metrics", values: url.Values{"f": {"Region"}}},
		{name: "unknown parameter", values: url.Values{"m": {"COUNT(*)"}, "group": {"Region"}}},
		{name: "case sensitive keys", values: url.Values{"M": {"COUNT(*)"}}},
		{name: "f and cf", values: url.Values{"m": {"COUNT(*)"}, "f": {"Region"}, "cf": {"Region"}}},
		{name: "two composite groups", values: url.Values{"m": {"COUNT(*)"}, "cf": {"Region", "Amount"}}},
		{name: "more groups than filters", values: url.Values{"m": {"COUNT(*)"}, "f": {"Region", "Amount"}}},
		{name: "empty group", values: url.Values{"m": {"COUNT(*)"}, "f": {" "}}},
		{name: "invalid casing mode", values: url.Values{"m": {"COUNT(*)"}, "f": {"Region[case=camel]"}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseParams("Orders", test.values)
			require.NotNil(t, err)
			assert.True(t, enterrors.IsConfiguration(err))
		})
	}

	t.Run("every problem is reported", func(t *testing.T) {
		_, err := ParseParams("Orders", url.Values{"x": {"1"}, "y": {"2"}})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), `unknown parameter "x"`)
		assert.Contains(t, err.Error(), `unknown parameter "y"`)
		assert.Contains(t, err.Error(), `missing required parameter "m"`)
	})
}

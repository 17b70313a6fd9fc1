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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericValues(t *testing.T) {
	t.Run("sum of longs", func(t *testing.T) {
		s := NewSum(KindLong)
		s.Add(3)
		s.Add(4)
		out, ok := s.Format()
		require.True(t, ok)
		assert.Equal(t, "7", out)
	})

	t.Run("sum of doubles decodes the bit pattern", func(t *testing.T) {
		s := NewSum(KindDouble)
		s.Add(EncodeFloat64(1.25))
		s.Add(EncodeFloat64(2.5))
		n, ok := s.Number()
		require.True(t, ok)
		assert.Equal(t, 3.75, n)
	})

	t.Run("sum of floats decodes the bit pattern", func(t *testing.T) {
		s := NewSum(KindFloat)
		s.Add(EncodeFloat32(0.5))
		s.Add(EncodeFloat32(0.25))
		out, _ := s.Format()
		assert.Equal(t, "0.75", out)
	})

	t.Run("min and max start degenerate", func(t *testing.T) {
		for _, v := range []Value{NewMin(KindLong), NewMax(KindLong), NewMin(KindDouble), NewMax(KindDate)} {
			assert.True(t, v.IsDegenerate())
			_, ok := v.Format()
			assert.False(t, ok)
		}
	})

	t.Run("min keeps the smallest input", func(t *testing.T) {
		m := NewMin(KindLong)
		for _, raw := range []int64{7, -3, 12} {
			m.Add(raw)
		}
		raw, ok := m.Raw()
		require.True(t, ok)
		assert.Equal(t, int64(-3), raw)
	})

	t.Run("max over dates renders the instant", func(t *testing.T) {
		m := NewMax(KindDate)
		m.Add(0)
		m.Add(86_400_000)
		out, ok := m.Format()
		require.True(t, ok)
		assert.Equal(t, "1970-01-02T00:00:00.000Z", out)
	})

	t.Run("merging a degenerate extreme changes nothing", func(t *testing.T) {
		m := NewMax(KindDouble)
		m.Add(EncodeFloat64(2))
		m.Merge(NewMax(KindDouble))
		n, ok := m.Number()
		require.True(t, ok)
		assert.Equal(t, 2.0, n)
	})

	t.Run("degenerate values sort lowest", func(t *testing.T) {
		touched := NewMin(KindLong)
		touched.Add(math.MinInt64 + 1)
		assert.Equal(t, -1, NewMin(KindLong).Compare(touched))
		assert.Equal(t, 1, touched.Compare(NewMin(KindLong)))
		assert.Equal(t, 0, NewMin(KindLong).Compare(NewMin(KindLong)))
	})
}

func TestAverage(t *testing.T) {
	t.Run("zero documents render empty", func(t *testing.T) {
		a := NewAverage(KindLong)
		assert.True(t, a.IsDegenerate())
		out, ok := a.Format()
		assert.False(t, ok)
		assert.Equal(t, "", out)

		n, _ := a.Number()
		assert.True(t, math.IsInf(n, -1))
	})

	t.Run("degenerate average compares as negative infinity", func(t *testing.T) {
		low := NewAverage(KindLong)
		low.Add(-1_000_000)
		assert.Equal(t, -1, NewAverage(KindLong).Compare(low))
	})

	t.Run("rounds to three decimals", func(t *testing.T) {
		a := NewAverage(KindLong)
		a.Add(1)
		a.Add(1)
		a.Add(2)
		out, ok := a.Format()
		require.True(t, ok)
		assert.Equal(t, "1.333", out)
	})

	t.Run("date average truncates to whole seconds", func(t *testing.T) {
		a := NewAverage(KindDate)
		a.Add(1_000)
		a.Add(2_999)
		out, ok := a.Format()
		require.True(t, ok)
		assert.Equal(t, "1970-01-01T00:00:01Z", out)
	})

	t.Run("merge keeps count and sum", func(t *testing.T) {
		a, b := NewAverage(KindDouble), NewAverage(KindDouble)
		a.Add(EncodeFloat64(1))
		b.Add(EncodeFloat64(2))
		b.Add(EncodeFloat64(6))
		a.Merge(b)
		n, ok := a.Number()
		require.True(t, ok)
		assert.Equal(t, 3.0, n)
	})
}

func TestDistinct(t *testing.T) {
	t.Run("counts distinct raw inputs", func(t *testing.T) {
		d := NewDistinct(KindLong)
		for _, raw := range []int64{4, 1, 4, 9, 1} {
			d.Add(raw)
		}
		assert.Equal(t, 3, d.Size())
		assert.Equal(t, []int64{1, 4, 9}, d.Raw())
		assert.Equal(t, []string{"1", "4", "9"}, d.Values())
	})

	t.Run("resolved sets merge by text", func(t *testing.T) {
		a := NewResolvedDistinct([]string{"red", "blue"})
		b := NewResolvedDistinct([]string{"blue", "green"})
		a.Merge(b)
		assert.Equal(t, []string{"blue", "green", "red"}, a.Values())
		out, _ := a.Format()
		assert.Equal(t, "3", out)
	})

	t.Run("clone is independent", func(t *testing.T) {
		d := NewDistinct(KindLong)
		d.Add(1)
		c := d.Clone().(*Distinct)
		c.Add(2)
		assert.Equal(t, 1, d.Size())
		assert.Equal(t, 2, c.Size())
	})
}

func TestTextExtreme(t *testing.T) {
	t.Run("unresolved compares by ordinal", func(t *testing.T) {
		a, b := NewTextMax(), NewTextMax()
		a.Add(3)
		b.Add(5)
		assert.Equal(t, -1, a.Compare(b))

		a.Merge(b)
		ordinal, ok := a.Ordinal()
		require.True(t, ok)
		assert.Equal(t, int64(5), ordinal)
	})

	t.Run("resolved merge keeps the lexical extreme", func(t *testing.T) {
		lowest := NewResolvedTextExtreme(false, "pear")
		lowest.Merge(NewResolvedTextExtreme(false, "apple"))
		lowest.Merge(NewResolvedTextExtreme(false, "zucchini"))
		out, ok := lowest.Format()
		require.True(t, ok)
		assert.Equal(t, "apple", out)
	})

	t.Run("never touched is degenerate", func(t *testing.T) {
		assert.True(t, NewTextMin().IsDegenerate())
		_, ok := NewTextMin().Format()
		assert.False(t, ok)
	})
}

func TestExpressions(t *testing.T) {
	sum := func(values ...int64) *Sum {
		s := NewSum(KindLong)
		for _, v := range values {
			s.Add(v)
		}
		return s
	}

	tests := []struct {
		name     string
		value    Value
		expected string
		ok       bool
	}{
		{
			name:     "addition",
			value:    NewBinary('+', sum(2, 3), NewConstant(1)),
			expected: "6",
			ok:       true,
		},
		{
			name:     "division snaps to integer",
			value:    NewBinary('/', sum(3), NewConstant(2.9999)),
			expected: "1",
			ok:       true,
		},
		{
			name:     "division keeps nine decimals",
			value:    NewBinary('/', sum(1), NewConstant(3)),
			expected: "0.333333333",
			ok:       true,
		},
		{
			name:  "division by zero is degenerate",
			value: NewBinary('/', sum(1), sum()),
			ok:    false,
		},
		{
			name:  "degenerate operand",
			value: NewBinary('*', NewAverage(KindLong), NewConstant(2)),
			ok:    false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, ok := test.value.Format()
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.expected, out)
		})
	}

	t.Run("constant ignores mutation", func(t *testing.T) {
		c := NewConstant(4)
		c.Add(100)
		c.Merge(NewConstant(7))
		c.Reset()
		n, ok := c.Number()
		require.True(t, ok)
		assert.Equal(t, 4.0, n)
	})

	t.Run("merge delegates to both operands", func(t *testing.T) {
		a := NewBinary('-', sum(10), sum(4))
		b := NewBinary('-', sum(5), sum(1))
		a.Merge(b)
		out, _ := a.Format()
		assert.Equal(t, "10", out)
	})
}

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
	"strconv"
	"time"
)

// Value is a metric accumulator. Raw inputs are the int64 encodings of the
// numeric column the metric reads from, see NumberKind.
type Value interface {
	Reset()
	Add(raw int64)
	// Merge adds the state of other, which must be the same variant.
	Merge(other Value)
	// Compare orders values of the same variant. Degenerate values sort
	// before everything else.
	Compare(other Value) int
	// IsDegenerate is true for values that carry no result, such as the
	// average of zero documents or a min that was never updated.
	IsDegenerate() bool
	// Format renders the value, ok is false for degenerate values.
	Format() (string, bool)
	// Number is the numeric view used by expressions.
	Number() (float64, bool)
	Clone() Value
}

// NumberKind describes how a raw int64 input is decoded.
type NumberKind int

const (
	KindLong NumberKind = iota
	KindFloat
	KindDouble
	KindDate
	KindBoolean
)

func (k NumberKind) IsFloating() bool {
	return k == KindFloat || k == KindDouble
}

func (k NumberKind) Decode(raw int64) float64 {
	switch k {
	case KindFloat:
		return float64(math.Float32frombits(uint32(raw)))
	case KindDouble:
		return math.Float64frombits(uint64(raw))
	default:
		return float64(raw)
	}
}

// EncodeFloat64 is the raw encoding of a double column value.
func EncodeFloat64(v float64) int64 {
	return int64(math.Float64bits(v))
}

// EncodeFloat32 is the raw encoding of a float column value.
func EncodeFloat32(v float32) int64 {
	return int64(math.Float32bits(v))
}

func (k NumberKind) formatRaw(raw int64) string {
	switch k {
	case KindFloat:
		return strconv.FormatFloat(k.Decode(raw), 'f', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(k.Decode(raw), 'f', -1, 64)
	case KindDate:
		return time.UnixMilli(raw).UTC().Format(DateFormat)
	case KindBoolean:
		return strconv.FormatBool(raw != 0)
	default:
		return strconv.FormatInt(raw, 10)
	}
}

// DateFormat is used to render date metrics.
const DateFormat = "2006-01-02T15:04:05.000Z07:00"

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareDegenerate handles the ordering when at least one side is
// degenerate. done is false if both sides carry a result.
func compareDegenerate(a, b Value) (res int, done bool) {
	da, db := a.IsDegenerate(), b.IsDegenerate()
	switch {
	case da && db:
		return 0, true
	case da:
		return -1, true
	case db:
		return 1, true
	default:
		return 0, false
	}
}

// compareNumbers is the fallback when two values are not the same variant.
func compareNumbers(a, b Value) int {
	if res, done := compareDegenerate(a, b); done {
		return res
	}
	na, _ := a.Number()
	nb, _ := b.Number()
	return compareFloat(na, nb)
}

// ValueSet holds one value per requested metric, in request order.
type ValueSet []Value

func (vs ValueSet) Reset() {
	for _, v := range vs {
		v.Reset()
	}
}

func (vs ValueSet) Merge(other ValueSet) {
	for i := range vs {
		vs[i].Merge(other[i])
	}
}

func (vs ValueSet) Clone() ValueSet {
	out := make(ValueSet, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

// Compare orders by the first metric, which is what top-N limits use.
func (vs ValueSet) Compare(other ValueSet) int {
	if len(vs) == 0 || len(other) == 0 {
		return len(vs) - len(other)
	}
	return vs[0].Compare(other[0])
}

// Strings renders every value, degenerate values render as "".
func (vs ValueSet) Strings() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		if s, ok := v.Format(); ok {
			out[i] = s
		}
	}
	return out
}

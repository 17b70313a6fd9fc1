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

// Count adds up its raw inputs, counters feed it 1 per hit or the number of
// values they found.
type Count struct {
	n int64
}

func NewCount() *Count {
	return &Count{}
}

func (c *Count) Reset() { c.n = 0 }
func (c *Count) Add(raw int64) { c.n += raw }
func (c *Count) Value() int64 { return c.n }
func (c *Count) IsDegenerate() bool { return false }
func (c *Count) Clone() Value { return &Count{n: c.n} }

func (c *Count) Merge(other Value) {
	c.n += other.(*Count).n
}

func (c *Count) Compare(other Value) int {
	o, ok := other.(*Count)
	if !ok {
		return compareNumbers(c, other)
	}
	return compareInt(c.n, o.n)
}

func (c *Count) Format() (string, bool) {
	return strconv.FormatInt(c.n, 10), true
}

func (c *Count) Number() (float64, bool) {
	return float64(c.n), true
}

// Sum accumulates integers exactly and floating point kinds as float64.
type Sum struct {
	kind NumberKind
	l    int64
	d    float64
}

func NewSum(kind NumberKind) *Sum {
	return &Sum{kind: kind}
}

func (s *Sum) Reset() {
	s.l, s.d = 0, 0
}

func (s *Sum) Add(raw int64) {
	if s.kind.IsFloating() {
		s.d += s.kind.Decode(raw)
		return
	}
	s.l += raw
}

func (s *Sum) Merge(other Value) {
	o := other.(*Sum)
	s.l += o.l
	s.d += o.d
}

func (s *Sum) Compare(other Value) int {
	o, ok := other.(*Sum)
	if !ok {
		return compareNumbers(s, other)
	}
	if s.kind.IsFloating() {
		return compareFloat(s.d, o.d)
	}
	return compareInt(s.l, o.l)
}

func (s *Sum) IsDegenerate() bool { return false }

func (s *Sum) Format() (string, bool) {
	switch s.kind {
	case KindFloat:
		return strconv.FormatFloat(s.d, 'f', -1, 32), true
	case KindDouble:
		return strconv.FormatFloat(s.d, 'f', -1, 64), true
	default:
		return strconv.FormatInt(s.l, 10), true
	}
}

func (s *Sum) Number() (float64, bool) {
	if s.kind.IsFloating() {
		return s.d, true
	}
	return float64(s.l), true
}

func (s *Sum) Clone() Value {
	out := *s
	return &out
}

// Extreme is a Min or a Max. It starts at the sentinel of its direction and
// is degenerate for as long as it still holds it.
type Extreme struct {
	kind NumberKind
	max  bool
	l    int64
	d    float64
}

func NewMin(kind NumberKind) *Extreme {
	e := &Extreme{kind: kind}
	e.Reset()
	return e
}

func NewMax(kind NumberKind) *Extreme {
	e := &Extreme{kind: kind, max: true}
	e.Reset()
	return e
}

func (e *Extreme) Reset() {
	if e.max {
		e.l, e.d = math.MinInt64, math.Inf(-1)
		return
	}
	e.l, e.d = math.MaxInt64, math.Inf(1)
}

func (e *Extreme) Add(raw int64) {
	if e.kind.IsFloating() {
		v := e.kind.Decode(raw)
		if (e.max && v > e.d) || (!e.max && v < e.d) {
			e.d = v
			e.l = raw
		}
		return
	}
	if (e.max && raw > e.l) || (!e.max && raw < e.l) {
		e.l = raw
	}
}

func (e *Extreme) Merge(other Value) {
	o := other.(*Extreme)
	if o.IsDegenerate() {
		return
	}
	if e.kind.IsFloating() {
		if e.IsDegenerate() || (e.max && o.d > e.d) || (!e.max && o.d < e.d) {
			e.d, e.l = o.d, o.l
		}
		return
	}
	e.Add(o.l)
}

func (e *Extreme) IsDegenerate() bool {
	if e.kind.IsFloating() {
		return math.IsInf(e.d, 0)
	}
	if e.max {
		return e.l == math.MinInt64
	}
	return e.l == math.MaxInt64
}

// Raw returns the raw encoding of the current extreme.
func (e *Extreme) Raw() (int64, bool) {
	if e.IsDegenerate() {
		return 0, false
	}
	return e.l, true
}

func (e *Extreme) Compare(other Value) int {
	o, ok := other.(*Extreme)
	if !ok {
		return compareNumbers(e, other)
	}
	if res, done := compareDegenerate(e, o); done {
		return res
	}
	if e.kind.IsFloating() {
		return compareFloat(e.d, o.d)
	}
	return compareInt(e.l, o.l)
}

func (e *Extreme) Format() (string, bool) {
	if e.IsDegenerate() {
		return "", false
	}
	return e.kind.formatRaw(e.l), true
}

func (e *Extreme) Number() (float64, bool) {
	if e.IsDegenerate() {
		return 0, false
	}
	if e.kind.IsFloating() {
		return e.d, true
	}
	return float64(e.l), true
}

func (e *Extreme) Clone() Value {
	out := *e
	return &out
}

// Average keeps count and sum. An average over zero documents is degenerate
// and compares as negative infinity.
type Average struct {
	kind  NumberKind
	count int64
	l     int64
	d     float64
}

func NewAverage(kind NumberKind) *Average {
	return &Average{kind: kind}
}

func (a *Average) Reset() {
	a.count, a.l, a.d = 0, 0, 0
}

func (a *Average) Add(raw int64) {
	a.count++
	if a.kind.IsFloating() {
		a.d += a.kind.Decode(raw)
		return
	}
	a.l += raw
}

func (a *Average) Merge(other Value) {
	o := other.(*Average)
	a.count += o.count
	a.l += o.l
	a.d += o.d
}

func (a *Average) IsDegenerate() bool {
	return a.count == 0
}

func (a *Average) Number() (float64, bool) {
	if a.count == 0 {
		return math.Inf(-1), false
	}
	if a.kind.IsFloating() {
		return a.d / float64(a.count), true
	}
	return float64(a.l) / float64(a.count), true
}

func (a *Average) Compare(other Value) int {
	o, ok := other.(*Average)
	if !ok {
		return compareNumbers(a, other)
	}
	na, _ := a.Number()
	nb, _ := o.Number()
	return compareFloat(na, nb)
}

func (a *Average) Format() (string, bool) {
	if a.count == 0 {
		return "", false
	}
	if a.kind == KindDate {
		secs := (a.l / a.count) / 1000
		return time.Unix(secs, 0).UTC().Format(time.RFC3339), true
	}
	n, _ := a.Number()
	return strconv.FormatFloat(math.Round(n*1000)/1000, 'f', -1, 64), true
}

func (a *Average) Clone() Value {
	out := *a
	return &out
}

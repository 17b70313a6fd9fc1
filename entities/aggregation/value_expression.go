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
)

// Binary combines two metric values arithmetically. It has no state of its
// own, every mutation is delegated to both operands.
type Binary struct {
	Op     byte
	First  Value
	Second Value
}

func NewBinary(op byte, first, second Value) *Binary {
	return &Binary{Op: op, First: first, Second: second}
}

func (b *Binary) Reset() {
	b.First.Reset()
	b.Second.Reset()
}

func (b *Binary) Add(raw int64) {
	b.First.Add(raw)
	b.Second.Add(raw)
}

func (b *Binary) Merge(other Value) {
	o := other.(*Binary)
	b.First.Merge(o.First)
	b.Second.Merge(o.Second)
}

func (b *Binary) Number() (float64, bool) {
	x, ok := b.First.Number()
	if !ok {
		return 0, false
	}
	y, ok := b.Second.Number()
	if !ok {
		return 0, false
	}
	switch b.Op {
	case '+':
		return x + y, true
	case '-':
		return x - y, true
	case '*':
		return x * y, true
	case '/':
		if y == 0 {
			return 0, false
		}
		return x / y, true
	default:
		return 0, false
	}
}

func (b *Binary) IsDegenerate() bool {
	_, ok := b.Number()
	return !ok
}

func (b *Binary) Compare(other Value) int {
	return compareNumbers(b, other)
}

func (b *Binary) Format() (string, bool) {
	n, ok := b.Number()
	if !ok {
		return "", false
	}
	return formatExpression(n), true
}

func (b *Binary) Clone() Value {
	return &Binary{Op: b.Op, First: b.First.Clone(), Second: b.Second.Clone()}
}

// formatExpression snaps results within 0.001 of an integer to that integer
// and otherwise prints at most nine decimals.
func formatExpression(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	if r := math.Round(n); math.Abs(n-r) < 0.001 {
		return strconv.FormatInt(int64(r), 10)
	}
	return strconv.FormatFloat(math.Round(n*1e9)/1e9, 'f', -1, 64)
}

// Constant is a literal in a metric expression, it ignores all mutation.
type Constant struct {
	value float64
}

func NewConstant(value float64) *Constant {
	return &Constant{value: value}
}

func (c *Constant) Reset() {}
func (c *Constant) Add(int64) {}
func (c *Constant) Merge(Value) {}
func (c *Constant) IsDegenerate() bool { return false }
func (c *Constant) Clone() Value { return c }

func (c *Constant) Compare(other Value) int {
	return compareNumbers(c, other)
}

func (c *Constant) Format() (string, bool) {
	return formatExpression(c.value), true
}

func (c *Constant) Number() (float64, bool) {
	return c.value, true
}

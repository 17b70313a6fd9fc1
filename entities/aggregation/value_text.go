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
	"sort"
	"strconv"
	"strings"
)

// Distinct collects raw inputs while a shard is scanned. Inputs that are
// references into a shard local table (text rows, id ranks) only become
// comparable across shards after they were resolved to their text, which
// the owning metric collector does once per bucket.
type Distinct struct {
	kind     NumberKind
	raw      map[int64]struct{}
	resolved map[string]struct{}
}

func NewDistinct(kind NumberKind) *Distinct {
	return &Distinct{kind: kind, raw: map[int64]struct{}{}}
}

// NewResolvedDistinct is the converted form of a Distinct.
func NewResolvedDistinct(values []string) *Distinct {
	d := &Distinct{raw: map[int64]struct{}{}, resolved: make(map[string]struct{}, len(values))}
	for _, v := range values {
		d.resolved[v] = struct{}{}
	}
	return d
}

func (d *Distinct) Reset() {
	d.raw = map[int64]struct{}{}
	d.resolved = nil
}

func (d *Distinct) Add(raw int64) {
	d.raw[raw] = struct{}{}
}

func (d *Distinct) Merge(other Value) {
	o := other.(*Distinct)
	for raw := range o.raw {
		d.raw[raw] = struct{}{}
	}
	if len(o.resolved) > 0 && d.resolved == nil {
		d.resolved = make(map[string]struct{}, len(o.resolved))
	}
	for v := range o.resolved {
		d.resolved[v] = struct{}{}
	}
}

// Size is the number of distinct values seen.
func (d *Distinct) Size() int {
	return len(d.raw) + len(d.resolved)
}

// Raw returns the unresolved inputs in ascending order.
func (d *Distinct) Raw() []int64 {
	out := make([]int64, 0, len(d.raw))
	for raw := range d.raw {
		out = append(out, raw)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Values renders every distinct value, sorted.
func (d *Distinct) Values() []string {
	out := make([]string, 0, d.Size())
	for v := range d.resolved {
		out = append(out, v)
	}
	for _, raw := range d.Raw() {
		out = append(out, d.kind.formatRaw(raw))
	}
	sort.Strings(out)
	return out
}

func (d *Distinct) Compare(other Value) int {
	o, ok := other.(*Distinct)
	if !ok {
		return compareNumbers(d, other)
	}
	return compareInt(int64(d.Size()), int64(o.Size()))
}

func (d *Distinct) IsDegenerate() bool { return false }

func (d *Distinct) Format() (string, bool) {
	return strconv.Itoa(d.Size()), true
}

func (d *Distinct) Number() (float64, bool) {
	return float64(d.Size()), true
}

func (d *Distinct) Clone() Value {
	out := &Distinct{kind: d.kind, raw: make(map[int64]struct{}, len(d.raw))}
	for raw := range d.raw {
		out.raw[raw] = struct{}{}
	}
	if d.resolved != nil {
		out.resolved = make(map[string]struct{}, len(d.resolved))
		for v := range d.resolved {
			out.resolved[v] = struct{}{}
		}
	}
	return out
}

// TextExtreme is the min or max of a text valued field. While scanning it
// compares the ordinals of a lexically sorted table, so ordering matches the
// text ordering without touching the text. Once resolved it holds the text.
type TextExtreme struct {
	ordinal  *Extreme
	max      bool
	resolved bool
	text     string
}

func NewTextMin() *TextExtreme {
	return &TextExtreme{ordinal: NewMin(KindLong)}
}

func NewTextMax() *TextExtreme {
	return &TextExtreme{ordinal: NewMax(KindLong), max: true}
}

// NewResolvedTextExtreme is the converted form of a TextExtreme.
func NewResolvedTextExtreme(max bool, text string) *TextExtreme {
	out := &TextExtreme{max: max, resolved: true, text: text}
	if max {
		out.ordinal = NewMax(KindLong)
	} else {
		out.ordinal = NewMin(KindLong)
	}
	return out
}

func (t *TextExtreme) Reset() {
	t.ordinal.Reset()
	t.resolved = false
	t.text = ""
}

func (t *TextExtreme) Add(raw int64) {
	t.ordinal.Add(raw)
}

// Ordinal returns the unresolved extreme.
func (t *TextExtreme) Ordinal() (int64, bool) {
	return t.ordinal.Raw()
}

func (t *TextExtreme) IsResolved() bool {
	return t.resolved
}

func (t *TextExtreme) Merge(other Value) {
	o := other.(*TextExtreme)
	if o.IsDegenerate() {
		return
	}
	if !o.resolved {
		t.ordinal.Merge(o.ordinal)
		return
	}
	if !t.resolved || t.better(o.text) {
		t.resolved = true
		t.text = o.text
	}
}

func (t *TextExtreme) better(candidate string) bool {
	cmp := strings.Compare(candidate, t.text)
	if t.max {
		return cmp > 0
	}
	return cmp < 0
}

func (t *TextExtreme) IsDegenerate() bool {
	return !t.resolved && t.ordinal.IsDegenerate()
}

func (t *TextExtreme) Compare(other Value) int {
	o, ok := other.(*TextExtreme)
	if !ok {
		return compareNumbers(t, other)
	}
	if res, done := compareDegenerate(t, o); done {
		return res
	}
	if t.resolved && o.resolved {
		return strings.Compare(t.text, o.text)
	}
	return t.ordinal.Compare(o.ordinal)
}

func (t *TextExtreme) Format() (string, bool) {
	if !t.resolved {
		return "", false
	}
	return t.text, true
}

// Number is not defined for text values.
func (t *TextExtreme) Number() (float64, bool) {
	return 0, false
}

func (t *TextExtreme) Clone() Value {
	out := *t
	out.ordinal = t.ordinal.Clone().(*Extreme)
	return &out
}

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

package helpers

import (
	"github.com/weaviate/sroar"
)

// Bitset is the per-document boolean result of a filter evaluation. Document
// ids are the row offsets of a segment, so the set is dense and backed by a
// roaring bitmap.
type Bitset struct {
	bm *sroar.Bitmap
}

func NewBitset(docs ...uint64) *Bitset {
	bm := sroar.NewBitmap()
	bm.SetMany(docs)
	return &Bitset{bm: bm}
}

// NewFullBitset returns a set containing every document in [0, size).
func NewFullBitset(size int) *Bitset {
	if size <= 0 {
		return NewBitset()
	}
	return &Bitset{bm: sroar.Prefill(uint64(size - 1))}
}

func NewBitsetFromBitmap(bm *sroar.Bitmap) *Bitset {
	return &Bitset{bm: bm}
}

func (b *Bitset) Set(doc int) {
	b.bm.Set(uint64(doc))
}

// Add sets doc and reports whether it was absent before.
func (b *Bitset) Add(doc int) bool {
	if b.bm.Contains(uint64(doc)) {
		return false
	}
	b.bm.Set(uint64(doc))
	return true
}

func (b *Bitset) Get(doc int) bool {
	if b == nil {
		return false
	}
	return b.bm.Contains(uint64(doc))
}

// Or merges other into b.
func (b *Bitset) Or(other *Bitset) {
	if other == nil {
		return
	}
	b.bm.Or(other.bm)
}

// And restricts b to the documents also in other.
func (b *Bitset) And(other *Bitset) {
	if other == nil {
		return
	}
	b.bm.And(other.bm)
}

func (b *Bitset) CountSet() int {
	if b == nil {
		return 0
	}
	return b.bm.GetCardinality()
}

func (b *Bitset) IsEmpty() bool {
	return b == nil || b.bm.IsEmpty()
}

func (b *Bitset) Clone() *Bitset {
	return &Bitset{bm: b.bm.Clone()}
}

// Slice returns the set documents in ascending order.
func (b *Bitset) Slice() []uint64 {
	return b.bm.ToArray()
}

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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitset(t *testing.T) {
	t.Run("full bitset", func(t *testing.T) {
		bs := NewFullBitset(5)
		assert.Equal(t, 5, bs.CountSet())
		assert.True(t, bs.Get(0))
		assert.True(t, bs.Get(4))
		assert.False(t, bs.Get(5))
	})

	t.Run("empty full bitset", func(t *testing.T) {
		bs := NewFullBitset(0)
		assert.True(t, bs.IsEmpty())
		assert.Equal(t, 0, bs.CountSet())
	})

	t.Run("or and and", func(t *testing.T) {
		a := NewBitset(1, 3, 5)
		b := NewBitset(3, 4)

		union := a.Clone()
		union.Or(b)
		assert.Equal(t, []uint64{1, 3, 4, 5}, union.Slice())

		intersection := a.Clone()
		intersection.And(b)
		assert.Equal(t, []uint64{3}, intersection.Slice())

		// the originals are untouched
		assert.Equal(t, 3, a.CountSet())
	})

	t.Run("add reports novelty", func(t *testing.T) {
		bs := NewBitset()
		assert.True(t, bs.Add(7))
		assert.False(t, bs.Add(7))
		assert.Equal(t, 1, bs.CountSet())
	})

	t.Run("nil bitset reads as empty", func(t *testing.T) {
		var bs *Bitset
		assert.False(t, bs.Get(1))
		assert.Equal(t, 0, bs.CountSet())
		assert.True(t, bs.IsEmpty())
	})
}

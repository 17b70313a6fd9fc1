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

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{name: "single word", in: "shoes", expected: []string{"shoes"}},
		{name: "punctuation", in: "red, blue & green!", expected: []string{"red", "blue", "green"}},
		{name: "keeps casing", in: "Red red", expected: []string{"Red", "red"}},
		{name: "repeated words once", in: "big big shoes", expected: []string{"big", "shoes"}},
		{name: "numbers are words", in: "size 42", expected: []string{"size", "42"}},
		{name: "empty", in: "  ", expected: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, TokenizeWords(tt.in))
		})
	}
}

func TestTokenizeWhitespace(t *testing.T) {
	assert.Equal(t, []string{"red-ish", "shoes"}, TokenizeWhitespace(" red-ish  shoes red-ish"))
}

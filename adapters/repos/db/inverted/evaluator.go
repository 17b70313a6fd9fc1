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

package inverted

import (
	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
)

// FilterEvaluator turns a filter expression into the set of matching
// documents of the searcher's table.
type FilterEvaluator interface {
	Evaluate(s segment.Searcher, filter string) (*helpers.Bitset, error)
}

var _ FilterEvaluator = (*Evaluator)(nil)

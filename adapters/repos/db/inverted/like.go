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
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaviate/olapcore/adapters/repos/db/segment"
)

type likeRegexp struct {
	optimizable bool
	min         string
	regexp      *regexp.Regexp
}

func parseLikeRegexp(in string) (*likeRegexp, error) {
	r, err := regexp.Compile(transformLikeStringToRegexp(in))
	if err != nil {
		return nil, errors.Wrap(err, "compile regex from 'like' string")
	}

	prefix := in
	if i := strings.IndexAny(in, "?*"); i >= 0 {
		prefix = in[:i]
	}

	return &likeRegexp{
		optimizable: prefix != "",
		min:         prefix,
		regexp:      r,
	}, nil
}

func transformLikeStringToRegexp(in string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range in {
		switch r {
		case '?':
			b.WriteByte('.')
		case '*':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

// matchingRows returns the rows of a sorted value table matching the
// pattern. Patterns with a fixed prefix only scan the rows sharing it.
func (l *likeRegexp) matchingRows(table segment.ValueTable) map[int]struct{} {
	out := map[int]struct{}{}
	start, size := 0, table.Size()
	if l.optimizable {
		start = sort.Search(size, func(row int) bool {
			return table.Value(row) >= l.min
		})
	}

	for row := start; row < size; row++ {
		value := table.Value(row)
		if l.optimizable && !strings.HasPrefix(value, l.min) {
			// the table is sorted, no later row can share the prefix
			break
		}
		if l.regexp.MatchString(value) {
			out[row] = struct{}{}
		}
	}
	return out
}

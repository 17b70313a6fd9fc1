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

// Package inverted turns filter expressions into document bitsets.
//
// The expression language is small: "*" matches every
// document, otherwise an expression is one or more comparisons joined by
// " AND ". A comparison is a field name, an operator out of
// =, !=, >, >=, <, <= and ~ (like, with ? and * wildcards) and a literal.
// Multi-valued fields match if any of their values matches, != matches
// documents without an equal value.
package inverted

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaviate/olapcore/adapters/repos/db/helpers"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

const (
	MatchAll     = "*"
	andSeparator = " AND "
)

type Operator string

const (
	OperatorEq   Operator = "="
	OperatorNeq  Operator = "!="
	OperatorGt   Operator = ">"
	OperatorGte  Operator = ">="
	OperatorLt   Operator = "<"
	OperatorLte  Operator = "<="
	OperatorLike Operator = "~"
)

// operators in match order, two character operators first
var operators = []Operator{OperatorNeq, OperatorGte, OperatorLte, OperatorEq, OperatorGt, OperatorLt, OperatorLike}

type Clause struct {
	Field    string
	Operator Operator
	Value    string
}

// ParseFilter splits an expression into its clauses. MatchAll yields no
// clauses.
func ParseFilter(in string) ([]Clause, error) {
	in = strings.TrimSpace(in)
	if in == "" || in == MatchAll {
		return nil, nil
	}

	parts := strings.Split(in, andSeparator)
	out := make([]Clause, 0, len(parts))
	for _, part := range parts {
		clause, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, clause)
	}
	return out, nil
}

func parseClause(in string) (Clause, error) {
	for i := 0; i < len(in); i++ {
		for _, op := range operators {
			if !strings.HasPrefix(in[i:], string(op)) {
				continue
			}
			field := strings.TrimSpace(in[:i])
			if field == "" {
				return Clause{}, enterrors.NewConfigurationError("filter %q: missing field", in)
			}
			return Clause{
				Field:    field,
				Operator: op,
				Value:    strings.TrimSpace(in[i+len(op):]),
			}, nil
		}
	}
	return Clause{}, enterrors.NewConfigurationError("filter %q: missing operator", in)
}

// Evaluator evaluates filter expressions against a searcher.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(s segment.Searcher, filter string) (*helpers.Bitset, error) {
	clauses, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	out := helpers.NewFullBitset(s.DocCount())
	for _, clause := range clauses {
		matches, err := e.evaluateClause(s, clause)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %s", clause)
		}
		out.And(matches)
	}
	return out, nil
}

func (e *Evaluator) evaluateClause(s segment.Searcher, c Clause) (*helpers.Bitset, error) {
	prop, err := s.Class().GetProperty(c.Field)
	if err != nil {
		return nil, enterrors.NewConfigurationError("%v", err)
	}

	negate := c.Operator == OperatorNeq
	if negate {
		c.Operator = OperatorEq
	}

	var matches *helpers.Bitset
	switch {
	case prop.DataType.IsNumeric():
		matches, err = e.numeric(s, prop, c)
	case prop.DataType == schema.DataTypeText:
		matches, err = e.text(s, c)
	case prop.DataType == schema.DataTypeID:
		matches, err = e.ids(s, c)
	default:
		err = enterrors.NewConfigurationError("can not filter on %s field %s", prop.DataType, c.Field)
	}
	if err != nil {
		return nil, err
	}

	if !negate {
		return matches, nil
	}
	out := helpers.NewBitset()
	for doc := 0; doc < s.DocCount(); doc++ {
		if !matches.Get(doc) {
			out.Set(doc)
		}
	}
	return out, nil
}

func (e *Evaluator) numeric(s segment.Searcher, prop *schema.Property, c Clause) (*helpers.Bitset, error) {
	if c.Operator == OperatorLike {
		return nil, enterrors.NewConfigurationError("like is not supported on %s fields", prop.DataType)
	}
	column, err := s.Numeric(prop.Name)
	if err != nil {
		return nil, err
	}
	literal, err := parseLiteral(prop.DataType, c.Value)
	if err != nil {
		return nil, err
	}

	floating := prop.DataType == schema.DataTypeFloat || prop.DataType == schema.DataTypeDouble
	out := helpers.NewBitset()
	for doc := 0; doc < s.DocCount(); doc++ {
		for slot := 0; slot < column.ValueCount(doc); slot++ {
			raw, ok := column.Value(doc, slot)
			if !ok {
				continue
			}
			var cmp int
			if floating {
				cmp = compareFloat(decodeFloat(prop.DataType, raw), decodeFloat(prop.DataType, literal))
			} else {
				cmp = compareInt(raw, literal)
			}
			if c.Operator.matches(cmp) {
				out.Set(doc)
				break
			}
		}
	}
	return out, nil
}

func (e *Evaluator) text(s segment.Searcher, c Clause) (*helpers.Bitset, error) {
	column, err := s.Values(c.Field)
	if err != nil {
		return nil, err
	}
	rows, err := matchingRows(column.Table(), c)
	if err != nil {
		return nil, err
	}

	out := helpers.NewBitset()
	for doc := 0; doc < s.DocCount(); doc++ {
		for _, row := range column.Rows(doc) {
			if _, ok := rows[row]; ok {
				out.Set(doc)
				break
			}
		}
	}
	return out, nil
}

func (e *Evaluator) ids(s segment.Searcher, c Clause) (*helpers.Bitset, error) {
	column := s.IDs()
	ranks, err := matchingRows(column.Table(), c)
	if err != nil {
		return nil, err
	}

	out := helpers.NewBitset()
	for doc := 0; doc < s.DocCount(); doc++ {
		if _, ok := ranks[column.Rank(doc)]; ok {
			out.Set(doc)
		}
	}
	return out, nil
}

func matchingRows(table segment.ValueTable, c Clause) (map[int]struct{}, error) {
	if c.Operator == OperatorLike {
		like, err := parseLikeRegexp(c.Value)
		if err != nil {
			return nil, err
		}
		return like.matchingRows(table), nil
	}

	out := map[int]struct{}{}
	for row := 0; row < table.Size(); row++ {
		if c.Operator.matches(strings.Compare(table.Value(row), c.Value)) {
			out[row] = struct{}{}
		}
	}
	return out, nil
}

func (op Operator) matches(cmp int) bool {
	switch op {
	case OperatorEq:
		return cmp == 0
	case OperatorGt:
		return cmp > 0
	case OperatorGte:
		return cmp >= 0
	case OperatorLt:
		return cmp < 0
	case OperatorLte:
		return cmp <= 0
	default:
		return false
	}
}

func parseLiteral(dt schema.DataType, in string) (int64, error) {
	var (
		v   interface{}
		err error
	)
	switch dt {
	case schema.DataTypeBoolean:
		v, err = strconv.ParseBool(in)
	case schema.DataTypeInt:
		v, err = strconv.ParseInt(in, 10, 64)
	case schema.DataTypeFloat, schema.DataTypeDouble:
		v, err = strconv.ParseFloat(in, 64)
	default:
		v = in
	}
	if err != nil {
		return 0, enterrors.NewConfigurationError("invalid %s literal %q", dt, in)
	}

	raw, err := segment.EncodeValue(dt, v)
	if err != nil {
		return 0, enterrors.NewConfigurationError("invalid %s literal %q: %v", dt, in, err)
	}
	return raw, nil
}

func decodeFloat(dt schema.DataType, raw int64) float64 {
	if dt == schema.DataTypeFloat {
		return float64(math.Float32frombits(uint32(raw)))
	}
	return math.Float64frombits(uint64(raw))
}

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

func (c Clause) String() string {
	return fmt.Sprintf("%s%s%s", c.Field, c.Operator, c.Value)
}

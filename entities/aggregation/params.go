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
	"strconv"
	"strings"
)

type Function string

const (
	FunctionCount    Function = "COUNT"
	FunctionSum      Function = "SUM"
	FunctionMin      Function = "MIN"
	FunctionMax      Function = "MAX"
	FunctionAverage  Function = "AVERAGE"
	FunctionDistinct Function = "DISTINCT"
)

var Functions = []Function{
	FunctionCount, FunctionSum, FunctionMin, FunctionMax, FunctionAverage, FunctionDistinct,
}

// ParseFunction matches function names by value, ignoring case.
func ParseFunction(name string) (Function, bool) {
	upper := Function(strings.ToUpper(strings.TrimSpace(name)))
	for _, f := range Functions {
		if f == upper {
			return f, true
		}
	}
	return "", false
}

// MaxTransitiveDepth caps link closures, a depth of zero means the cap.
const MaxTransitiveDepth = 1024

// PathStep is one field on the way from the aggregated table to the field a
// metric reads. Transitive steps follow the same link repeatedly.
type PathStep struct {
	Field      string
	Transitive bool
	Depth      int
}

func (s PathStep) MaxDepth() int {
	if s.Depth <= 0 || s.Depth > MaxTransitiveDepth {
		return MaxTransitiveDepth
	}
	return s.Depth
}

func (s PathStep) String() string {
	if !s.Transitive {
		return s.Field
	}
	if s.Depth > 0 {
		return s.Field + "*" + strconv.Itoa(s.Depth)
	}
	return s.Field + "*"
}

// Metric is a parsed metric expression: either a function over a path, a
// binary expression or a constant.
type Metric struct {
	Function Function
	// Path is empty for COUNT(*)
	Path   []PathStep
	Filter string

	Op     byte
	First  *Metric
	Second *Metric

	Constant *float64
}

func (m *Metric) IsFunction() bool {
	return m.Function != ""
}

func (m *Metric) IsBinary() bool {
	return m.Op != 0
}

// IsCountAll is true for a bare COUNT(*).
func (m *Metric) IsCountAll() bool {
	return m.Function == FunctionCount && len(m.Path) == 0 && m.Filter == ""
}

func (m *Metric) String() string {
	switch {
	case m.Constant != nil:
		return strconv.FormatFloat(*m.Constant, 'f', -1, 64)
	case m.IsBinary():
		return "(" + m.First.String() + string(m.Op) + m.Second.String() + ")"
	default:
		path := "*"
		if len(m.Path) > 0 {
			steps := make([]string, len(m.Path))
			for i, step := range m.Path {
				steps[i] = step.String()
			}
			path = strings.Join(steps, ".")
		}
		if m.Filter != "" {
			path += "|" + m.Filter
		}
		return string(m.Function) + "(" + path + ")"
	}
}

type DateUnit string

const (
	DateUnitSecond  DateUnit = "SECOND"
	DateUnitMinute  DateUnit = "MINUTE"
	DateUnitHour    DateUnit = "HOUR"
	DateUnitDay     DateUnit = "DAY"
	DateUnitWeek    DateUnit = "WEEK"
	DateUnitMonth   DateUnit = "MONTH"
	DateUnitQuarter DateUnit = "QUARTER"
	DateUnitYear    DateUnit = "YEAR"
)

var DateUnits = []DateUnit{
	DateUnitSecond, DateUnitMinute, DateUnitHour, DateUnitDay,
	DateUnitWeek, DateUnitMonth, DateUnitQuarter, DateUnitYear,
}

// IsTruncation is true for units computed from the per day result.
func (u DateUnit) IsTruncation() bool {
	switch u {
	case DateUnitWeek, DateUnitMonth, DateUnitQuarter, DateUnitYear:
		return true
	default:
		return false
	}
}

type DatePart string

const (
	DatePartMinuteOfHour DatePart = "MINUTE_OF_HOUR"
	DatePartHourOfDay    DatePart = "HOUR_OF_DAY"
	DatePartDayOfMonth   DatePart = "DAY_OF_MONTH"
	DatePartMonthOfYear  DatePart = "MONTH_OF_YEAR"
	DatePartYear         DatePart = "YEAR"
)

var DateParts = []DatePart{
	DatePartMinuteOfHour, DatePartHourOfDay, DatePartDayOfMonth, DatePartMonthOfYear, DatePartYear,
}

type CaseMode string

const (
	CaseNone  CaseMode = ""
	CaseLower CaseMode = "lower"
	CaseUpper CaseMode = "upper"
	CaseFold  CaseMode = "fold"
)

// GroupingStep is one grouping level. Inner is the next step of the same
// level and only valid when Field is a link. Level wide options (Top,
// Include, Exclude, Case, Tokenize) live on the first step, field specific
// options (Buckets, DateUnit, DatePart, TimeZone) on the last one and Filter
// on the link whose targets it restricts.
type GroupingStep struct {
	Field  string
	Inner  *GroupingStep
	Filter string

	Buckets  []string
	DateUnit DateUnit
	DatePart DatePart
	TimeZone string

	Include  []string
	Exclude  []string
	Case     CaseMode
	Tokenize bool
	Top      int
}

// Leaf returns the last step of the level.
func (s *GroupingStep) Leaf() *GroupingStep {
	leaf := s
	for leaf.Inner != nil {
		leaf = leaf.Inner
	}
	return leaf
}

func (s *GroupingStep) Path() []string {
	var out []string
	for step := s; step != nil; step = step.Inner {
		out = append(out, step.Field)
	}
	return out
}

// Part is one independently filtered and grouped branch of a request.
type Part struct {
	Filter   string
	Grouping []*GroupingStep
}

type Params struct {
	ClassName string
	Metrics   []*Metric
	Parts     []*Part
	// Shards restricts the request, all shards of the class when empty.
	Shards []string
}

// Tops returns the top-N of every nesting depth.
func (p *Params) Tops() []int {
	if len(p.Parts) == 0 {
		return nil
	}
	out := make([]int, len(p.Parts[0].Grouping))
	for i, level := range p.Parts[0].Grouping {
		out[i] = level.Top
	}
	return out
}

// IsCountOnly is true for a bare COUNT(*) without grouping, which needs no
// collectors at all.
func (p *Params) IsCountOnly() bool {
	if len(p.Metrics) != 1 || !p.Metrics[0].IsCountAll() {
		return false
	}
	for _, part := range p.Parts {
		if len(part.Grouping) > 0 {
			return false
		}
	}
	return true
}

// Depth is the number of nested result levels.
func (p *Params) Depth() int {
	if len(p.Parts) == 0 {
		return 0
	}
	return len(p.Parts[0].Grouping)
}

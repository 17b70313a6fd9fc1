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
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	enterrors "github.com/weaviate/olapcore/entities/errors"
)

// Query parameter names of the aggregation contract. Keys are case
// sensitive.
const (
	ParamMetrics           = "m"
	ParamQuery             = "q"
	ParamGroup             = "f"
	ParamCompositeGroup    = "cf"
	defaultFilter          = "*"
	compositeLevelSplitter = ','
)

var knownParams = map[string]struct{}{
	ParamMetrics:        {},
	ParamQuery:          {},
	ParamGroup:          {},
	ParamCompositeGroup: {},
}

// ParseParams validates the query parameters of an aggregation request. All
// problems found are reported together.
func ParseParams(className string, values url.Values) (*Params, error) {
	var result *multierror.Error

	unknown := make([]string, 0)
	for key := range values {
		if _, ok := knownParams[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result = multierror.Append(result,
			enterrors.NewConfigurationError("unknown parameter %q", key))
	}

	params := &Params{ClassName: className}

	metrics := values[ParamMetrics]
	switch {
	case len(metrics) == 0 || strings.TrimSpace(strings.Join(metrics, "")) == "":
		result = multierror.Append(result,
			enterrors.NewConfigurationError("missing required parameter %q", ParamMetrics))
	default:
		for _, m := range metrics {
			parsed, err := ParseMetrics(m)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			params.Metrics = append(params.Metrics, parsed...)
		}
	}

	groups, composite := values[ParamGroup], values[ParamCompositeGroup]
	filters := values[ParamQuery]
	if len(filters) == 0 {
		filters = []string{defaultFilter}
	}

	var chains [][]*GroupingStep
	switch {
	case len(groups) > 0 && len(composite) > 0:
		result = multierror.Append(result, enterrors.NewConfigurationError(
			"parameters %q and %q are mutually exclusive", ParamGroup, ParamCompositeGroup))
	case len(composite) > 1:
		result = multierror.Append(result, enterrors.NewConfigurationError(
			"only one group set is supported, got %d values for %q", len(composite), ParamCompositeGroup))
	case len(composite) == 1:
		chain, err := ParseGrouping(composite[0], true)
		if err != nil {
			result = multierror.Append(result, err)
		}
		chains = append(chains, chain)
	case len(groups) > 1 && len(groups) != len(filters):
		result = multierror.Append(result, enterrors.NewConfigurationError(
			"only one group set is supported unless one is given per filter, got %d groups for %d filters",
			len(groups), len(filters)))
	default:
		for _, group := range groups {
			chain, err := ParseGrouping(group, false)
			if err != nil {
				result = multierror.Append(result, err)
			}
			chains = append(chains, chain)
		}
	}

	for i, filter := range filters {
		filter = strings.TrimSpace(filter)
		if filter == "" {
			filter = defaultFilter
		}
		part := &Part{Filter: filter}
		switch len(chains) {
		case 0:
		case 1:
			part.Grouping = cloneChain(chains[0])
		default:
			if i < len(chains) {
				part.Grouping = chains[i]
			}
		}
		params.Parts = append(params.Parts, part)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := params.validateShape(); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Params) validateShape() error {
	depth := p.Depth()
	for i, part := range p.Parts {
		if len(part.Grouping) != depth {
			return enterrors.NewConfigurationError(
				"part %d groups %d levels deep, expected %d", i, len(part.Grouping), depth)
		}
	}
	return nil
}

func cloneChain(in []*GroupingStep) []*GroupingStep {
	out := make([]*GroupingStep, len(in))
	for i, step := range in {
		out[i] = cloneStep(step)
	}
	return out
}

func cloneStep(in *GroupingStep) *GroupingStep {
	if in == nil {
		return nil
	}
	out := *in
	out.Inner = cloneStep(in.Inner)
	return &out
}

// splitTopLevel splits on sep outside of brackets and parentheses.
func splitTopLevel(in string, sep rune) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range in {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, in[start:i])
				start = i + 1
			}
		}
	}
	return append(out, in[start:])
}

// ParseMetrics parses a comma separated list of metric expressions.
func ParseMetrics(in string) ([]*Metric, error) {
	var out []*Metric
	for _, expr := range splitTopLevel(in, ',') {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			return nil, enterrors.NewConfigurationError("empty metric expression in %q", in)
		}
		p := &metricParser{in: expr}
		m, err := p.parseExpr()
		if err != nil {
			return nil, errors.Wrapf(err, "metric %q", expr)
		}
		p.skipSpaces()
		if !p.done() {
			return nil, enterrors.NewConfigurationError(
				"metric %q: unexpected %q at offset %d", expr, p.in[p.pos:], p.pos)
		}
		out = append(out, m)
	}
	return out, nil
}

type metricParser struct {
	in  string
	pos int
}

func (p *metricParser) done() bool {
	return p.pos >= len(p.in)
}

func (p *metricParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.in[p.pos]
}

func (p *metricParser) skipSpaces() {
	for !p.done() && p.in[p.pos] == ' ' {
		p.pos++
	}
}

func (p *metricParser) parseExpr() (*Metric, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Metric{Op: op, First: left, Second: right}
	}
}

func (p *metricParser) parseTerm() (*Metric, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Metric{Op: op, First: left, Second: right}
	}
}

func (p *metricParser) parseFactor() (*Metric, error) {
	p.skipSpaces()
	c := p.peek()
	switch {
	case c == 0:
		return nil, enterrors.NewConfigurationError("unexpected end of expression")
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return nil, enterrors.NewConfigurationError("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.parseConstant()
	case isIdentRune(rune(c)):
		return p.parseFunction()
	default:
		return nil, enterrors.NewConfigurationError("unexpected %q at offset %d", string(c), p.pos)
	}
}

func (p *metricParser) parseConstant() (*Metric, error) {
	start := p.pos
	for !p.done() && (p.peek() == '.' || (p.peek() >= '0' && p.peek() <= '9')) {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.in[start:p.pos], 64)
	if err != nil {
		return nil, enterrors.NewConfigurationError("invalid number %q", p.in[start:p.pos])
	}
	return &Metric{Constant: &v}, nil
}

func (p *metricParser) parseFunction() (*Metric, error) {
	start := p.pos
	for !p.done() && isIdentRune(rune(p.peek())) {
		p.pos++
	}
	name := p.in[start:p.pos]
	fn, ok := ParseFunction(name)
	if !ok {
		return nil, enterrors.NewConfigurationError("unsupported function %q", name)
	}

	p.skipSpaces()
	if p.peek() != '(' {
		return nil, enterrors.NewConfigurationError("expected '(' after %s", name)
	}
	p.pos++
	bodyStart, depth := p.pos, 1
	for !p.done() && depth > 0 {
		switch p.peek() {
		case '(':
			depth++
		case ')':
			depth--
		}
		p.pos++
	}
	if depth != 0 {
		return nil, enterrors.NewConfigurationError("missing closing parenthesis after %s", name)
	}
	body := p.in[bodyStart : p.pos-1]

	m := &Metric{Function: fn}
	if i := strings.IndexByte(body, '|'); i >= 0 {
		m.Filter = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}
	path, err := parsePath(strings.TrimSpace(body))
	if err != nil {
		return nil, err
	}
	if len(path) == 0 && fn != FunctionCount {
		return nil, enterrors.NewConfigurationError("%s requires a field", fn)
	}
	m.Path = path
	return m, nil
}

func parsePath(in string) ([]PathStep, error) {
	if in == "*" {
		return nil, nil
	}
	if in == "" {
		return nil, enterrors.NewConfigurationError("missing field")
	}
	parts := strings.Split(in, ".")
	out := make([]PathStep, len(parts))
	for i, part := range parts {
		step := PathStep{Field: strings.TrimSpace(part)}
		if j := strings.IndexByte(step.Field, '*'); j >= 0 {
			step.Transitive = true
			if depth := step.Field[j+1:]; depth != "" {
				d, err := strconv.Atoi(depth)
				if err != nil || d < 0 {
					return nil, enterrors.NewConfigurationError("invalid transitive depth %q", depth)
				}
				step.Depth = d
			}
			step.Field = step.Field[:j]
		}
		if !isIdent(step.Field) {
			return nil, enterrors.NewConfigurationError("invalid field name %q", part)
		}
		out[i] = step
	}
	return out, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdent(in string) bool {
	if in == "" {
		return false
	}
	for _, r := range in {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

// ParseGrouping parses a grouping chain. A plain chain holds exactly one
// level, a composite one holds comma separated levels from outer to inner.
func ParseGrouping(in string, composite bool) ([]*GroupingStep, error) {
	in = strings.TrimSpace(in)
	if in == "" {
		return nil, enterrors.NewConfigurationError("empty grouping")
	}
	levels := []string{in}
	if composite {
		levels = splitTopLevel(in, compositeLevelSplitter)
	}
	out := make([]*GroupingStep, len(levels))
	for i, level := range levels {
		step, err := parseLevel(strings.TrimSpace(level))
		if err != nil {
			return nil, errors.Wrapf(err, "grouping level %d", i)
		}
		out[i] = step
	}
	return out, nil
}

func parseLevel(in string) (*GroupingStep, error) {
	path, options := in, ""
	if i := strings.IndexByte(in, '['); i >= 0 {
		if !strings.HasSuffix(in, "]") {
			return nil, enterrors.NewConfigurationError("unterminated options in %q", in)
		}
		path, options = in[:i], in[i+1:len(in)-1]
	}

	var root, leaf, lastLink *GroupingStep
	for _, field := range strings.Split(strings.TrimSpace(path), ".") {
		field = strings.TrimSpace(field)
		if !isIdent(field) {
			return nil, enterrors.NewConfigurationError("invalid field name %q", field)
		}
		step := &GroupingStep{Field: field}
		if root == nil {
			root = step
		} else {
			lastLink = leaf
			leaf.Inner = step
		}
		leaf = step
	}

	if options == "" {
		return root, nil
	}
	for _, option := range strings.Split(options, ";") {
		key, value, _ := strings.Cut(option, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if err := applyOption(root, leaf, lastLink, key, value); err != nil {
			return nil, err
		}
	}
	if err := leaf.validateFieldOptions(); err != nil {
		return nil, err
	}
	return root, nil
}

func applyOption(root, leaf, lastLink *GroupingStep, key, value string) error {
	switch key {
	case "top":
		top, err := strconv.Atoi(value)
		if err != nil {
			return enterrors.NewConfigurationError("invalid top %q", value)
		}
		root.Top = top
	case "include":
		root.Include = splitList(value)
	case "exclude":
		root.Exclude = splitList(value)
	case "case":
		mode, err := ParseCaseMode(value)
		if err != nil {
			return err
		}
		root.Case = mode
	case "tokenize":
		root.Tokenize = value == "" || value == "true"
	case "date":
		unit := DateUnit(strings.ToUpper(value))
		if !containsUnit(unit) {
			return enterrors.NewConfigurationError("invalid date unit %q", value)
		}
		leaf.DateUnit = unit
	case "part":
		part := DatePart(strings.ToUpper(value))
		if !containsPart(part) {
			return enterrors.NewConfigurationError("invalid date part %q", value)
		}
		leaf.DatePart = part
	case "buckets":
		leaf.Buckets = splitList(value)
		if len(leaf.Buckets) == 0 {
			return enterrors.NewConfigurationError("empty bucket boundary list")
		}
	case "tz":
		leaf.TimeZone = value
	case "filter":
		if lastLink == nil {
			return enterrors.NewConfigurationError("filter option requires a link path")
		}
		lastLink.Filter = value
	default:
		return enterrors.NewConfigurationError("unknown grouping option %q", key)
	}
	return nil
}

func (s *GroupingStep) validateFieldOptions() error {
	set := 0
	if s.DateUnit != "" {
		set++
	}
	if s.DatePart != "" {
		set++
	}
	if len(s.Buckets) > 0 {
		set++
	}
	if set > 1 {
		return enterrors.NewConfigurationError(
			"field %q: date, part and buckets are mutually exclusive", s.Field)
	}
	return nil
}

// ParseCaseMode rejects every casing mode it does not know.
func ParseCaseMode(in string) (CaseMode, error) {
	switch mode := CaseMode(strings.ToLower(in)); mode {
	case CaseNone, CaseLower, CaseUpper, CaseFold:
		return mode, nil
	default:
		return "", enterrors.NewConfigurationError("invalid casing mode %q", in)
	}
}

func splitList(in string) []string {
	var out []string
	for _, item := range strings.Split(in, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func containsUnit(unit DateUnit) bool {
	for _, u := range DateUnits {
		if u == unit {
			return true
		}
	}
	return false
}

func containsPart(part DatePart) bool {
	for _, p := range DateParts {
		if p == part {
			return true
		}
	}
	return false
}

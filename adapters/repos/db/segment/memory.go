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

package segment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/entities/schema"
)

// Memory is a Store keeping every shard in memory. Replacing or compacting
// a shard starts a new generation, searchers of older generations report
// the segment as gone.
type Memory struct {
	mu     sync.RWMutex
	shards map[string]*generation
}

type generation struct {
	shard *Shard
	id    uint64
}

func NewMemory() *Memory {
	return &Memory{shards: map[string]*generation{}}
}

// Put adds or replaces a shard.
func (m *Memory) Put(shard *Shard) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id uint64
	if prev, ok := m.shards[shard.Name]; ok {
		id = prev.id + 1
	}
	m.shards[shard.Name] = &generation{shard: shard, id: id}
}

// Compact rewrites a shard. Its content stays the same, open searchers are
// invalidated.
func (m *Memory) Compact(shard string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.shards[shard]
	if !ok {
		return fmt.Errorf("shard %s not found", shard)
	}
	m.shards[shard] = &generation{shard: prev.shard, id: prev.id + 1}
	return nil
}

// Get returns the current content of a shard.
func (m *Memory) Get(shard string) (*Shard, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gen, ok := m.shards[shard]
	if !ok {
		return nil, false
	}
	return gen.shard, true
}

func (m *Memory) Shards(class string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for name, gen := range m.shards {
		if _, ok := gen.shard.Tables[class]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Memory) Open(ctx context.Context, class, shard string) (Searcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	gen, ok := m.shards[shard]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NewSegmentGone(shard)
	}
	table, ok := gen.shard.Tables[class]
	if !ok {
		return nil, fmt.Errorf("class %s not found in shard %s", class, shard)
	}
	return &memorySearcher{store: m, shard: gen.shard, generation: gen.id, table: table}, nil
}

func (m *Memory) current(shard string) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gen, ok := m.shards[shard]
	if !ok {
		return 0, false
	}
	return gen.id, true
}

type memorySearcher struct {
	store      *Memory
	shard      *Shard
	generation uint64
	table      *Table
}

func (s *memorySearcher) Shard() string {
	return s.shard.Name
}

func (s *memorySearcher) Class() *schema.Class {
	return s.table.Class
}

func (s *memorySearcher) DocCount() int {
	return len(s.table.IDs)
}

func (s *memorySearcher) property(field string, accept func(schema.DataType) bool) (*schema.Property, error) {
	prop, err := s.table.Class.GetProperty(field)
	if err != nil {
		return nil, errors.NewConfigurationError("%v", err)
	}
	if !accept(prop.DataType) {
		return nil, errors.NewConfigurationError("field %s of %s has type %s",
			field, s.table.Class.Name, prop.DataType)
	}
	return prop, nil
}

func (s *memorySearcher) Numeric(field string) (NumericColumn, error) {
	prop, err := s.property(field, schema.DataType.IsNumeric)
	if err != nil {
		return nil, err
	}
	return &numericColumn{dataType: prop.DataType, values: s.table.Numeric[field]}, nil
}

func (s *memorySearcher) Values(field string) (TextColumn, error) {
	_, err := s.property(field, func(dt schema.DataType) bool { return dt == schema.DataTypeText })
	if err != nil {
		return nil, err
	}
	values := s.table.Text[field]
	if values == nil {
		values = &TextValues{}
	}
	return &textColumn{values: values}, nil
}

func (s *memorySearcher) Links(field string) (LinkColumn, error) {
	prop, err := s.property(field, func(dt schema.DataType) bool { return dt == schema.DataTypeLink })
	if err != nil {
		return nil, err
	}
	return &linkColumn{target: prop.Target, targets: s.table.Links[field]}, nil
}

func (s *memorySearcher) IDs() IDColumn {
	return idColumn{table: s.table}
}

func (s *memorySearcher) Table(class string) (Searcher, error) {
	table, ok := s.shard.Tables[class]
	if !ok {
		return nil, fmt.Errorf("class %s not found in shard %s", class, s.shard.Name)
	}
	return &memorySearcher{store: s.store, shard: s.shard, generation: s.generation, table: table}, nil
}

func (s *memorySearcher) Check() error {
	if id, ok := s.store.current(s.shard.Name); !ok || id != s.generation {
		return errors.NewSegmentGone(s.shard.Name)
	}
	return nil
}

func (s *memorySearcher) SortedIDs() IDStream {
	return &idStream{searcher: s}
}

func (s *memorySearcher) Close() error {
	return nil
}

type numericColumn struct {
	dataType schema.DataType
	values   [][]int64
}

func (c *numericColumn) DataType() schema.DataType {
	return c.dataType
}

func (c *numericColumn) Value(doc, slot int) (int64, bool) {
	if doc >= len(c.values) || slot >= len(c.values[doc]) {
		return 0, false
	}
	return c.values[doc][slot], true
}

func (c *numericColumn) ValueCount(doc int) int {
	if doc >= len(c.values) {
		return 0
	}
	return len(c.values[doc])
}

func (c *numericColumn) Range() (int64, int64, bool) {
	var lo, hi int64
	found := false
	for _, values := range c.values {
		for _, v := range values {
			if !found || v < lo {
				lo = v
			}
			if !found || v > hi {
				hi = v
			}
			found = true
		}
	}
	return lo, hi, found
}

type textColumn struct {
	values *TextValues
}

func (c *textColumn) Rows(doc int) []int {
	if doc >= len(c.values.Rows) {
		return nil
	}
	return c.values.Rows[doc]
}

func (c *textColumn) ValueCount(doc int) int {
	return len(c.Rows(doc))
}

func (c *textColumn) Table() ValueTable {
	return stringTable(c.values.Terms)
}

type stringTable []string

func (t stringTable) Value(row int) string {
	return t[row]
}

func (t stringTable) Size() int {
	return len(t)
}

type linkColumn struct {
	target  string
	targets [][]int
}

func (c *linkColumn) Targets(doc int) []int {
	if doc >= len(c.targets) {
		return nil
	}
	return c.targets[doc]
}

func (c *linkColumn) ValueCount(doc int) int {
	return len(c.Targets(doc))
}

func (c *linkColumn) Target() string {
	return c.target
}

type idColumn struct {
	table *Table
}

func (c idColumn) ID(doc int) string {
	return c.table.IDs[doc]
}

func (c idColumn) Rank(doc int) int {
	return c.table.Ranks[doc]
}

func (c idColumn) Table() ValueTable {
	return rankTable{table: c.table}
}

type rankTable struct {
	table *Table
}

func (t rankTable) Value(rank int) string {
	return t.table.IDs[t.table.Sorted[rank]]
}

func (t rankTable) Size() int {
	return len(t.table.IDs)
}

// idStream walks the ids in rank order and stops with ErrSegmentGone if the
// shard is compacted underneath.
type idStream struct {
	searcher *memorySearcher
	pos      int
	err      error
}

func (s *idStream) Next() (string, bool) {
	if s.err != nil {
		return "", false
	}
	if err := s.searcher.Check(); err != nil {
		s.err = err
		return "", false
	}
	table := s.searcher.table
	if s.pos >= len(table.Sorted) {
		return "", false
	}
	id := table.IDs[table.Sorted[s.pos]]
	s.pos++
	return id, true
}

func (s *idStream) Err() error {
	return s.err
}

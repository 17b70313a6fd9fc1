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
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/weaviate/olapcore/entities/aggregation"
	"github.com/weaviate/olapcore/entities/schema"
)

// Shard is the stored form of one shard: one table per class.
type Shard struct {
	Name   string            `msgpack:"name"`
	Tables map[string]*Table `msgpack:"tables"`
}

type Table struct {
	Class *schema.Class `msgpack:"class"`
	IDs   []string      `msgpack:"ids"`
	// Ranks maps a document to the position of its id in lexical order,
	// Sorted is the inverse.
	Ranks  []int `msgpack:"ranks"`
	Sorted []int `msgpack:"sorted"`

	Numeric map[string][][]int64   `msgpack:"numeric"`
	Text    map[string]*TextValues `msgpack:"text"`
	Links   map[string][][]int     `msgpack:"links"`
}

type TextValues struct {
	Terms []string `msgpack:"terms"`
	Rows  [][]int  `msgpack:"rows"`
}

// Document is the input of a ShardBuilder. Field values are scalars or
// slices of scalars. Links are given as the ids of their targets.
type Document struct {
	ID     string                 `json:"id,omitempty"`
	Fields map[string]interface{} `json:"fields"`
}

type ShardBuilder struct {
	name   string
	order  []string
	tables map[string]*tableInput
}

type tableInput struct {
	class *schema.Class
	docs  []Document
}

func NewShardBuilder(name string) *ShardBuilder {
	return &ShardBuilder{name: name, tables: map[string]*tableInput{}}
}

// Add appends documents to the table of class.
func (b *ShardBuilder) Add(class *schema.Class, docs ...Document) *ShardBuilder {
	in, ok := b.tables[class.Name]
	if !ok {
		in = &tableInput{class: class}
		b.tables[class.Name] = in
		b.order = append(b.order, class.Name)
	}
	in.docs = append(in.docs, docs...)
	return b
}

// Build encodes every table. Documents without id get a random one.
func (b *ShardBuilder) Build() (*Shard, error) {
	shard := &Shard{Name: b.name, Tables: make(map[string]*Table, len(b.tables))}
	rowsByID := make(map[string]map[string]int, len(b.tables))

	for _, name := range b.order {
		in := b.tables[name]
		table := &Table{
			Class:   in.class,
			IDs:     make([]string, len(in.docs)),
			Numeric: map[string][][]int64{},
			Text:    map[string]*TextValues{},
			Links:   map[string][][]int{},
		}
		rows := make(map[string]int, len(in.docs))
		for i, doc := range in.docs {
			id := doc.ID
			if id == "" {
				id = uuid.New().String()
			}
			if _, dup := rows[id]; dup {
				return nil, fmt.Errorf("table %s: duplicate id %s", name, id)
			}
			rows[id] = i
			table.IDs[i] = id
		}
		table.rank()
		shard.Tables[name] = table
		rowsByID[name] = rows
	}

	for _, name := range b.order {
		in := b.tables[name]
		table := shard.Tables[name]
		for _, prop := range in.class.Properties {
			var err error
			switch {
			case prop.DataType.IsNumeric():
				table.Numeric[prop.Name], err = encodeNumeric(prop, in.docs)
			case prop.DataType == schema.DataTypeText:
				table.Text[prop.Name], err = encodeText(prop, in.docs)
			case prop.DataType == schema.DataTypeLink:
				targets, ok := rowsByID[prop.Target]
				if !ok {
					targets = map[string]int{}
				}
				table.Links[prop.Name], err = encodeLinks(prop, in.docs, targets)
			default:
				err = fmt.Errorf("unsupported data type %q", prop.DataType)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "table %s: property %s", name, prop.Name)
			}
		}
	}

	return shard, nil
}

func (t *Table) rank() {
	t.Sorted = make([]int, len(t.IDs))
	for i := range t.Sorted {
		t.Sorted[i] = i
	}
	sort.Slice(t.Sorted, func(a, b int) bool {
		return t.IDs[t.Sorted[a]] < t.IDs[t.Sorted[b]]
	})
	t.Ranks = make([]int, len(t.IDs))
	for rank, doc := range t.Sorted {
		t.Ranks[doc] = rank
	}
}

func asSlice(in interface{}) []interface{} {
	switch v := in.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []int64:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []float64:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	default:
		return []interface{}{in}
	}
}

func encodeNumeric(prop *schema.Property, docs []Document) ([][]int64, error) {
	out := make([][]int64, len(docs))
	for i, doc := range docs {
		values := asSlice(doc.Fields[prop.Name])
		if len(values) == 0 {
			continue
		}
		out[i] = make([]int64, len(values))
		for j, v := range values {
			raw, err := EncodeValue(prop.DataType, v)
			if err != nil {
				return nil, errors.Wrapf(err, "document %d", i)
			}
			out[i][j] = raw
		}
	}
	return out, nil
}

// EncodeValue converts a scalar into the raw encoding of a numeric column.
func EncodeValue(dt schema.DataType, v interface{}) (int64, error) {
	switch dt {
	case schema.DataTypeBoolean:
		switch b := v.(type) {
		case bool:
			if b {
				return 1, nil
			}
			return 0, nil
		case string:
			switch strings.ToLower(b) {
			case "true":
				return 1, nil
			case "false":
				return 0, nil
			}
		}
	case schema.DataTypeInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}
	case schema.DataTypeFloat, schema.DataTypeDouble:
		var f float64
		switch n := v.(type) {
		case int:
			f = float64(n)
		case int64:
			f = float64(n)
		case float32:
			f = float64(n)
		case float64:
			f = n
		default:
			return 0, fmt.Errorf("can not encode %T as %s", v, dt)
		}
		if dt == schema.DataTypeFloat {
			return aggregation.EncodeFloat32(float32(f)), nil
		}
		return aggregation.EncodeFloat64(f), nil
	case schema.DataTypeDate:
		switch d := v.(type) {
		case time.Time:
			return d.UnixMilli(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, d)
			if err != nil {
				if parsed, err = time.Parse(time.DateOnly, d); err != nil {
					return 0, errors.Wrapf(err, "parse date %q", d)
				}
			}
			return parsed.UnixMilli(), nil
		case int64:
			return d, nil
		case float64:
			return int64(d), nil
		}
	}
	return 0, fmt.Errorf("can not encode %T as %s", v, dt)
}

func encodeText(prop *schema.Property, docs []Document) (*TextValues, error) {
	perDoc := make([][]string, len(docs))
	unique := map[string]struct{}{}
	for i, doc := range docs {
		for _, v := range asSlice(doc.Fields[prop.Name]) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("document %d: can not encode %T as text", i, v)
			}
			perDoc[i] = append(perDoc[i], s)
			unique[s] = struct{}{}
		}
	}

	out := &TextValues{Terms: make([]string, 0, len(unique)), Rows: make([][]int, len(docs))}
	for term := range unique {
		out.Terms = append(out.Terms, term)
	}
	sort.Strings(out.Terms)
	rows := make(map[string]int, len(out.Terms))
	for row, term := range out.Terms {
		rows[term] = row
	}
	for i, terms := range perDoc {
		for _, term := range terms {
			out.Rows[i] = append(out.Rows[i], rows[term])
		}
	}
	return out, nil
}

func encodeLinks(prop *schema.Property, docs []Document, targets map[string]int) ([][]int, error) {
	out := make([][]int, len(docs))
	for i, doc := range docs {
		for _, v := range asSlice(doc.Fields[prop.Name]) {
			id, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("document %d: link targets are ids, got %T", i, v)
			}
			row, ok := targets[id]
			if !ok {
				return nil, fmt.Errorf("document %d: no %s with id %s", i, prop.Target, id)
			}
			out[i] = append(out[i], row)
		}
	}
	return out, nil
}

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

package schema

import (
	"fmt"
	"strings"
)

type DataType string

const (
	// DataTypeBoolean is stored in a numeric column as 0 or 1
	DataTypeBoolean DataType = "boolean"
	// DataTypeInt is stored in a numeric column as is
	DataTypeInt DataType = "int"
	// DataTypeFloat is stored in a numeric column as the IEEE754 bits of a float32
	DataTypeFloat DataType = "float"
	// DataTypeDouble is stored in a numeric column as the IEEE754 bits of a float64
	DataTypeDouble DataType = "double"
	// DataTypeDate is stored in a numeric column as unix milliseconds
	DataTypeDate DataType = "date"
	// DataTypeText is stored as a sorted value table plus per-document links
	// into that table
	DataTypeText DataType = "text"
	// DataTypeID is the object identifier of a document
	DataTypeID DataType = "id"
	// DataTypeLink is a relationship to documents of another table
	DataTypeLink DataType = "link"
)

var DataTypes = []DataType{
	DataTypeBoolean, DataTypeInt, DataTypeFloat, DataTypeDouble,
	DataTypeDate, DataTypeText, DataTypeID, DataTypeLink,
}

// IsNumeric reports whether values of the type live in a numeric column.
func (dt DataType) IsNumeric() bool {
	switch dt {
	case DataTypeBoolean, DataTypeInt, DataTypeFloat, DataTypeDouble, DataTypeDate:
		return true
	default:
		return false
	}
}

// IsLinked reports whether documents reach their values through a link
// column, which is the case for text values and relationships.
func (dt DataType) IsLinked() bool {
	return dt == DataTypeText || dt == DataTypeLink
}

func ParseDataType(in string) (DataType, error) {
	for _, dt := range DataTypes {
		if strings.EqualFold(string(dt), in) {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unrecognized data type %q", in)
}

// IDField is the reserved name of the object identifier field.
const IDField = "id"

type Property struct {
	Name     string   `json:"name" msgpack:"name"`
	DataType DataType `json:"dataType" msgpack:"dataType"`
	// Target is the table a link property points to.
	Target string `json:"target,omitempty" msgpack:"target,omitempty"`
}

type Class struct {
	Name       string      `json:"name" msgpack:"name"`
	Properties []*Property `json:"properties" msgpack:"properties"`
}

// GetProperty returns the property with the given name. The reserved IDField
// always resolves to the id pseudo property.
func (c *Class) GetProperty(name string) (*Property, error) {
	if name == IDField {
		return &Property{Name: IDField, DataType: DataTypeID}, nil
	}
	for _, prop := range c.Properties {
		if prop.Name == name {
			return prop, nil
		}
	}
	return nil, fmt.Errorf("no such prop with name '%s' found in class '%s'", name, c.Name)
}

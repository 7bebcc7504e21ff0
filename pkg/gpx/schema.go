package gpx

import (
	"github.com/samber/lo"
)

// Attribute identifies one descriptive attribute of a GPS object.
//
// The numeric order is the order of the master attribute table, which
// defines field order in every View.
type Attribute int

const (
	AttrName Attribute = iota
	AttrElevation
	AttrSymbol
	AttrNumber
	AttrComment
	AttrDescription
	AttrSource
	AttrURL
	AttrURLName
)

// FieldType is the value type of an attribute field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDouble
	FieldInt
)

// String returns the field type name ("text", "double", "int").
func (t FieldType) String() string {
	switch t {
	case FieldDouble:
		return "double"
	case FieldInt:
		return "int"
	default:
		return "text"
	}
}

// Field describes one attribute column of a View.
type Field struct {
	Name      string
	Type      FieldType
	Attribute Attribute
}

type attributeDef struct {
	name      string
	typ       FieldType
	appliesTo []FeatureType
}

var allTypes = []FeatureType{WaypointType, RouteType, TrackType}

// attributeTable is the master attribute table, indexed by Attribute.
var attributeTable = [...]attributeDef{
	AttrName:        {"name", FieldText, allTypes},
	AttrElevation:   {"elevation", FieldDouble, []FeatureType{WaypointType}},
	AttrSymbol:      {"symbol", FieldText, []FeatureType{WaypointType}},
	AttrNumber:      {"number", FieldInt, []FeatureType{RouteType, TrackType}},
	AttrComment:     {"comment", FieldText, allTypes},
	AttrDescription: {"description", FieldText, allTypes},
	AttrSource:      {"source", FieldText, allTypes},
	AttrURL:         {"url", FieldText, allTypes},
	AttrURLName:     {"url name", FieldText, allTypes},
}

// String returns the attribute's field name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= len(attributeTable) {
		return "unknown"
	}
	return attributeTable[a].name
}

// AppliesTo reports whether the attribute exists on objects of type t.
func (a Attribute) AppliesTo(t FeatureType) bool {
	if a < 0 || int(a) >= len(attributeTable) {
		return false
	}
	return lo.Contains(attributeTable[a].appliesTo, t)
}

// FieldsFor returns the attribute schema of a feature type: the subset of
// the master table that applies to t, in table order.
func FieldsFor(t FeatureType) []Field {
	var fields []Field
	for i, def := range attributeTable {
		if !lo.Contains(def.appliesTo, t) {
			continue
		}
		fields = append(fields, Field{
			Name:      def.name,
			Type:      def.typ,
			Attribute: Attribute(i),
		})
	}
	return fields
}

// FieldIndex returns the index of the named field in fields, or -1.
func FieldIndex(fields []Field, name string) int {
	_, idx, ok := lo.FindIndexOf(fields, func(f Field) bool { return f.Name == name })
	if !ok {
		return -1
	}
	return idx
}

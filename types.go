// Copyright (c) 2025 Will Toth

package wpilog

import (
	"encoding/json"
	"strings"
)

// LogicalType is the closed set of column value shapes this package
// produces, extensible only through struct references.
type LogicalType int

const (
	TypeUnknown LogicalType = iota
	TypeFloat64
	TypeFloat32
	TypeInt64
	TypeBool
	TypeString
	TypeListBool
	TypeListInt64
	TypeListFloat32
	TypeListFloat64
	TypeListString
	TypeStruct      // carries StructName
	TypeListStruct  // carries StructName
)

func (t LogicalType) String() string {
	switch t {
	case TypeFloat64:
		return "f64"
	case TypeFloat32:
		return "f32"
	case TypeInt64:
		return "i64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeListBool:
		return "list<bool>"
	case TypeListInt64:
		return "list<i64>"
	case TypeListFloat32:
		return "list<f32>"
	case TypeListFloat64:
		return "list<f64>"
	case TypeListString:
		return "list<string>"
	case TypeStruct:
		return "struct"
	case TypeListStruct:
		return "list<struct>"
	default:
		return "unknown"
	}
}

// MarshalJSON renders a LogicalType by its String() name rather than its
// underlying int, so schema/frame JSON output reads like the wire type
// names instead of opaque enum values.
func (t LogicalType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// structSchemaTypeString is the WPILOG type string marking an entry as
// carrying struct-schema declaration text rather than data.
const structSchemaTypeString = "structschema"

// structSchemaNamePrefix identifies a structschema entry by its declared
// name.
const structSchemaNamePrefix = "/.schema/struct:"

// classifiedType is the result of classifying a WPILOG type string: a
// logical type plus, for struct-shaped types, the referenced struct name.
type classifiedType struct {
	Logical    LogicalType
	StructName string
}

// classifyType maps a WPILOG type string to the internal logical type
// lattice. ok is false when the type string is not recognized and
// the caller should emit a warning before falling back to TypeString.
func classifyType(typeString string) (classifiedType, bool) {
	switch typeString {
	case "double":
		return classifiedType{Logical: TypeFloat64}, true
	case "float":
		return classifiedType{Logical: TypeFloat32}, true
	case "int64":
		return classifiedType{Logical: TypeInt64}, true
	case "boolean":
		return classifiedType{Logical: TypeBool}, true
	case "string":
		return classifiedType{Logical: TypeString}, true
	case "boolean[]":
		return classifiedType{Logical: TypeListBool}, true
	case "int64[]":
		return classifiedType{Logical: TypeListInt64}, true
	case "float[]":
		return classifiedType{Logical: TypeListFloat32}, true
	case "double[]":
		return classifiedType{Logical: TypeListFloat64}, true
	case "string[]":
		return classifiedType{Logical: TypeListString}, true
	}

	if strings.HasPrefix(typeString, "struct:") {
		rest := strings.TrimPrefix(typeString, "struct:")
		if strings.HasSuffix(rest, "[]") {
			name := strings.TrimSuffix(rest, "[]")
			return classifiedType{Logical: TypeListStruct, StructName: name}, true
		}
		return classifiedType{Logical: TypeStruct, StructName: rest}, true
	}

	return classifiedType{Logical: TypeString}, false
}

// isStructSchemaEntry reports whether a Start record with the given name
// and type string declares struct-schema text rather than a data column,
// and returns the struct name it defines.
func isStructSchemaEntry(name, typeString string) (structName string, ok bool) {
	if strings.HasPrefix(name, structSchemaNamePrefix) {
		return strings.TrimPrefix(name, structSchemaNamePrefix), true
	}
	if typeString == structSchemaTypeString {
		return name, true
	}
	return "", false
}

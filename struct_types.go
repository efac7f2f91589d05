// Copyright (c) 2025 Will Toth

package wpilog

// IntType is the underlying integer type of a bit-field declaration.
// It excludes char and the floating-point kinds.
type IntType int

const (
	IntBool IntType = iota
	IntInt8
	IntInt16
	IntInt32
	IntInt64
	IntUint8
	IntUint16
	IntUint32
	IntUint64
)

// bits returns the storage width of t in bits. bits(bool) is 8 for
// storage purposes even though legal bit-widths on bool run 1..8.
func (t IntType) bits() int {
	switch t {
	case IntBool, IntInt8, IntUint8:
		return 8
	case IntInt16, IntUint16:
		return 16
	case IntInt32, IntUint32:
		return 32
	case IntInt64, IntUint64:
		return 64
	default:
		return 0
	}
}

func (t IntType) bytes() int { return t.bits() / 8 }

func (t IntType) signed() bool {
	switch t {
	case IntInt8, IntInt16, IntInt32, IntInt64:
		return true
	default:
		return false
	}
}

// FieldKind is the scalar/array/struct-ref shape of a standard field.
type FieldKind int

const (
	FieldBool FieldKind = iota
	FieldChar
	FieldInt8
	FieldInt16
	FieldInt32
	FieldInt64
	FieldUint8
	FieldUint16
	FieldUint32
	FieldUint64
	FieldFloat32
	FieldFloat64
	FieldArray
	FieldStructRef
)

// primitiveSize returns the byte size of a non-array, non-struct field
// kind, or 0 if k is FieldArray/FieldStructRef (those require layout
// context to size).
func (k FieldKind) primitiveSize() int {
	switch k {
	case FieldBool, FieldChar, FieldInt8, FieldUint8:
		return 1
	case FieldInt16, FieldUint16:
		return 2
	case FieldInt32, FieldUint32, FieldFloat32:
		return 4
	case FieldInt64, FieldUint64, FieldFloat64:
		return 8
	default:
		return 0
	}
}

// EnumSpec is the optional int->name annotation on a field.
// Values are never resolved to symbolic names in the columnar output;
// it is retained only for round-tripping the declaration.
type EnumSpec struct {
	Values map[int64]string
}

// FieldDecl is a parsed, not-yet-laid-out declaration: either a
// standard field or a bit-field.
type FieldDecl struct {
	Name string
	Enum *EnumSpec

	// Standard field data. A non-FieldArray Kind with IsBitfield=false and
	// ArrayLen==0 describes a scalar.
	Kind       FieldKind
	ArrayLen   int    // >0 for FieldArray
	ElemKind   FieldKind
	StructName string // set when Kind (or ElemKind, for arrays) is FieldStructRef

	// Bit-field data.
	IsBitfield bool
	IntType    IntType
	BitWidth   int
}

// StandardField is a laid-out non-bit-field member of a StructSchema.
type StandardField struct {
	Name       string
	Kind       FieldKind
	ArrayLen   int
	ElemKind   FieldKind
	StructName string
	Offset     int
	Size       int
	Enum       *EnumSpec
}

// BitField is a laid-out bit-field member of a StructSchema.
type BitField struct {
	Name            string
	IntType         IntType
	BitWidth        int
	StorageOffset   int
	BitOffsetInUnit int
	SpansUnits      bool
	Enum            *EnumSpec
}

// StructField is a tagged union over StandardField and BitField,
// preserving declaration order within a StructSchema.
type StructField struct {
	Standard *StandardField
	Bit      *BitField
}

func (f StructField) name() string {
	if f.Standard != nil {
		return f.Standard.Name
	}
	return f.Bit.Name
}

// StructSchema is a fully laid-out packed-struct definition.
type StructSchema struct {
	Name      string
	Fields    []StructField
	TotalSize int
}

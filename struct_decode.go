// Copyright (c) 2025 Will Toth

package wpilog

import (
	"encoding/binary"
	"math"
)

// FieldValue is a tagged union over the scalar kinds, a fixed-length
// list (for array fields), and a boxed nested StructValue. Exactly one
// of the typed fields is meaningful, selected by Kind.
type FieldValue struct {
	Kind     FieldKind
	Bool     bool
	Char     byte
	Int      int64  // Int8/16/32/64 and bit-fields (always zero-extended)
	Uint     uint64 // Uint8/16/32/64
	Float32  float32
	Float64  float64
	Array    []FieldValue
	Struct   *StructValue
	IsBit    bool // true when this value came from a bit-field (stored in Int)
}

// StructValue is a deserialized struct instance: its schema name and a
// field-name-keyed map of decoded values.
type StructValue struct {
	Name   string
	Fields map[string]FieldValue
}

// StructDeserializer reads packed binary struct data against a frozen
// StructRegistry. It caches the most recently resolved schema lookup
// to avoid repeated map lookups when decoding arrays of the same
// struct.
type StructDeserializer struct {
	registry      *StructRegistry
	cachedName    string
	cachedSchema  *StructSchema
}

// NewStructDeserializer returns a deserializer bound to registry.
func NewStructDeserializer(registry *StructRegistry) *StructDeserializer {
	return &StructDeserializer{registry: registry}
}

func (d *StructDeserializer) schema(name string) (*StructSchema, error) {
	if d.cachedSchema != nil && d.cachedName == name {
		return d.cachedSchema, nil
	}
	s, ok := d.registry.Get(name)
	if !ok {
		return nil, schemaErrorf("struct %q not found in registry", name)
	}
	d.cachedName = name
	d.cachedSchema = s
	return s, nil
}

// Deserialize decodes one struct instance of the named schema from the
// front of data. data must be at least the schema's TotalSize long.
func (d *StructDeserializer) Deserialize(name string, data []byte) (*StructValue, error) {
	schema, err := d.schema(name)
	if err != nil {
		return nil, err
	}
	if len(data) < schema.TotalSize {
		return nil, parseErrorf("struct %q: need %d bytes, got %d", name, schema.TotalSize, len(data))
	}

	fields := make(map[string]FieldValue, len(schema.Fields))
	for _, f := range schema.Fields {
		if f.Standard != nil {
			v, err := d.deserializeStandard(f.Standard, data)
			if err != nil {
				return nil, err
			}
			fields[f.Standard.Name] = v
		} else {
			v, err := d.deserializeBitfield(f.Bit, data)
			if err != nil {
				return nil, err
			}
			fields[f.Bit.Name] = v
		}
	}
	return &StructValue{Name: name, Fields: fields}, nil
}

func (d *StructDeserializer) deserializeStandard(f *StandardField, data []byte) (FieldValue, error) {
	if f.Kind == FieldArray {
		elemSize, err := d.elemSize(f.ElemKind, f.StructName)
		if err != nil {
			return FieldValue{}, err
		}
		values := make([]FieldValue, f.ArrayLen)
		for i := 0; i < f.ArrayLen; i++ {
			off := f.Offset + i*elemSize
			v, err := d.deserializeScalar(f.ElemKind, f.StructName, data, off)
			if err != nil {
				return FieldValue{}, err
			}
			values[i] = v
		}
		return FieldValue{Kind: FieldArray, Array: values}, nil
	}
	return d.deserializeScalar(f.Kind, f.StructName, data, f.Offset)
}

func (d *StructDeserializer) elemSize(kind FieldKind, structName string) (int, error) {
	if kind == FieldStructRef {
		s, err := d.schema(structName)
		if err != nil {
			return 0, err
		}
		return s.TotalSize, nil
	}
	return kind.primitiveSize(), nil
}

// deserializeScalar decodes a single non-array field at byte offset
// off. Struct-ref fields recurse into Deserialize.
func (d *StructDeserializer) deserializeScalar(kind FieldKind, structName string, data []byte, off int) (FieldValue, error) {
	switch kind {
	case FieldBool:
		return FieldValue{Kind: kind, Bool: data[off] != 0}, nil
	case FieldChar:
		return FieldValue{Kind: kind, Char: data[off]}, nil
	case FieldInt8:
		return FieldValue{Kind: kind, Int: int64(int8(data[off]))}, nil
	case FieldUint8:
		return FieldValue{Kind: kind, Uint: uint64(data[off])}, nil
	case FieldInt16:
		return FieldValue{Kind: kind, Int: int64(int16(binary.LittleEndian.Uint16(data[off : off+2])))}, nil
	case FieldUint16:
		return FieldValue{Kind: kind, Uint: uint64(binary.LittleEndian.Uint16(data[off : off+2]))}, nil
	case FieldInt32:
		return FieldValue{Kind: kind, Int: int64(int32(binary.LittleEndian.Uint32(data[off : off+4])))}, nil
	case FieldUint32:
		return FieldValue{Kind: kind, Uint: uint64(binary.LittleEndian.Uint32(data[off : off+4]))}, nil
	case FieldInt64:
		return FieldValue{Kind: kind, Int: int64(binary.LittleEndian.Uint64(data[off : off+8]))}, nil
	case FieldUint64:
		return FieldValue{Kind: kind, Uint: binary.LittleEndian.Uint64(data[off : off+8])}, nil
	case FieldFloat32:
		bits := binary.LittleEndian.Uint32(data[off : off+4])
		return FieldValue{Kind: kind, Float32: math.Float32frombits(bits)}, nil
	case FieldFloat64:
		bits := binary.LittleEndian.Uint64(data[off : off+8])
		return FieldValue{Kind: kind, Float64: math.Float64frombits(bits)}, nil
	case FieldStructRef:
		s, err := d.schema(structName)
		if err != nil {
			return FieldValue{}, err
		}
		nested, err := d.Deserialize(structName, data[off:off+s.TotalSize])
		if err != nil {
			return FieldValue{}, err
		}
		return FieldValue{Kind: kind, Struct: nested}, nil
	default:
		return FieldValue{}, parseErrorf("unsupported field kind %d", kind)
	}
}

// deserializeBitfield extracts a bit-field: zero-extended, never
// sign-extended regardless of the underlying type's signedness.
func (d *StructDeserializer) deserializeBitfield(f *BitField, data []byte) (FieldValue, error) {
	width := f.IntType.bits()
	size := f.IntType.bytes()

	var raw uint64
	if !f.SpansUnits {
		unit := readUintLE(data, f.StorageOffset, size)
		mask := uint64(1)<<uint(f.BitWidth) - 1
		raw = (unit >> uint(f.BitOffsetInUnit)) & mask
	} else {
		u1 := readUintLE(data, f.StorageOffset, size)
		u2 := readUintLE(data, f.StorageOffset+size, size)

		bitsInFirst := width - f.BitOffsetInUnit
		mask1 := uint64(1)<<uint(bitsInFirst) - 1
		lower := (u1 >> uint(f.BitOffsetInUnit)) & mask1

		bitsInSecond := f.BitWidth - bitsInFirst
		mask2 := uint64(1)<<uint(bitsInSecond) - 1
		upper := u2 & mask2

		raw = lower | (upper << uint(bitsInFirst))
	}

	return FieldValue{Kind: FieldInt64, Int: int64(raw), IsBit: true}, nil
}

// readUintLE reads an n-byte (n in {1,2,4,8}) little-endian unsigned
// integer at off.
func readUintLE(data []byte, off, n int) uint64 {
	switch n {
	case 1:
		return uint64(data[off])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data[off : off+2]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data[off : off+4]))
	default:
		return binary.LittleEndian.Uint64(data[off : off+8])
	}
}

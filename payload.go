// Copyright (c) 2025 Will Toth

package wpilog

import (
	"encoding/binary"
	"math"
)

// decodePayload decodes one data record's payload according to its
// column's (possibly degraded) logical type.
func decodePayload(col columnDecl, rec Record, deserializer *StructDeserializer) (*Value, error) {
	payload := rec.Payload

	switch col.Logical {
	case TypeBool:
		if len(payload) != 1 {
			return nil, unexpectedPayloadLenError(rec.EntryID, len(payload), 1)
		}
		return &Value{Type: TypeBool, Bool: payload[0] != 0}, nil

	case TypeInt64:
		if len(payload) != 8 {
			return nil, unexpectedPayloadLenError(rec.EntryID, len(payload), 8)
		}
		return &Value{Type: TypeInt64, Int64: int64(binary.LittleEndian.Uint64(payload))}, nil

	case TypeFloat64:
		if len(payload) != 8 {
			return nil, unexpectedPayloadLenError(rec.EntryID, len(payload), 8)
		}
		bits := binary.LittleEndian.Uint64(payload)
		return &Value{Type: TypeFloat64, Float64: math.Float64frombits(bits)}, nil

	case TypeFloat32:
		if len(payload) != 4 {
			return nil, unexpectedPayloadLenError(rec.EntryID, len(payload), 4)
		}
		bits := binary.LittleEndian.Uint32(payload)
		return &Value{Type: TypeFloat32, Float32: math.Float32frombits(bits)}, nil

	case TypeString:
		return &Value{Type: TypeString, String: toUTF8Lossy(payload)}, nil

	case TypeListBool:
		vals := make([]bool, len(payload))
		for i, b := range payload {
			vals[i] = b != 0
		}
		return &Value{Type: TypeListBool, BoolList: vals}, nil

	case TypeListInt64:
		if len(payload)%8 != 0 {
			return nil, parseErrorf("entry %d: int64 list payload length %d not a multiple of 8", rec.EntryID, len(payload))
		}
		n := len(payload) / 8
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(binary.LittleEndian.Uint64(payload[i*8 : i*8+8]))
		}
		return &Value{Type: TypeListInt64, Int64List: vals}, nil

	case TypeListFloat32:
		if len(payload)%4 != 0 {
			return nil, parseErrorf("entry %d: float32 list payload length %d not a multiple of 4", rec.EntryID, len(payload))
		}
		n := len(payload) / 4
		vals := make([]float32, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
		}
		return &Value{Type: TypeListFloat32, Float32List: vals}, nil

	case TypeListFloat64:
		if len(payload)%8 != 0 {
			return nil, parseErrorf("entry %d: float64 list payload length %d not a multiple of 8", rec.EntryID, len(payload))
		}
		n := len(payload) / 8
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8 : i*8+8]))
		}
		return &Value{Type: TypeListFloat64, Float64List: vals}, nil

	case TypeListString:
		vals, err := decodeStringList(rec.EntryID, payload)
		if err != nil {
			return nil, err
		}
		return &Value{Type: TypeListString, StringList: vals}, nil

	case TypeStruct:
		sv, err := deserializer.Deserialize(col.StructName, payload)
		if err != nil {
			return nil, err
		}
		return &Value{Type: TypeStruct, Struct: sv}, nil

	case TypeListStruct:
		schema, ok := deserializer.registry.Get(col.StructName)
		if !ok {
			return nil, schemaErrorf("struct %q not found in registry", col.StructName)
		}
		if schema.TotalSize == 0 || len(payload)%schema.TotalSize != 0 {
			return nil, parseErrorf("entry %d: struct list payload length %d not a multiple of struct size %d", rec.EntryID, len(payload), schema.TotalSize)
		}
		n := len(payload) / schema.TotalSize
		list := make([]*StructValue, n)
		for i := 0; i < n; i++ {
			sv, err := deserializer.Deserialize(col.StructName, payload[i*schema.TotalSize:(i+1)*schema.TotalSize])
			if err != nil {
				return nil, err
			}
			list[i] = sv
		}
		return &Value{Type: TypeListStruct, StructList: list}, nil

	default:
		return &Value{Type: TypeString, String: toUTF8Lossy(payload)}, nil
	}
}

// decodeStringList decodes a `list<string>` payload: a u32 count
// followed by that many length-prefixed strings.
func decodeStringList(entryID uint32, payload []byte) ([]string, error) {
	if len(payload) < 4 {
		return nil, parseErrorf("entry %d: string list payload too short for count", entryID)
	}
	count := int(binary.LittleEndian.Uint32(payload[:4]))
	off := 4
	vals := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, next, err := readLenPrefixedString(payload, off)
		if err != nil {
			return nil, err
		}
		vals = append(vals, s)
		off = next
	}
	return vals, nil
}


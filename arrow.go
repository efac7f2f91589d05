// Copyright (c) 2025 Will Toth

package wpilog

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ToArrow is the logical-type -> columnar adapter: it builds an
// arrow.Schema and arrow.Record from a DataFrame and its Pass-1 Schema
// descriptor, using apache/arrow-go/v18's Field/Builder types to
// produce Arrow record batches rather than a Parquet writer.
func ToArrow(result *Result) (arrow.Record, error) {
	mem := memory.NewGoAllocator()

	fields := make([]arrow.Field, 0, len(result.Frame.Columns)+1)
	fields = append(fields, arrow.Field{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64})

	builders := make([]array.Builder, 0, len(result.Frame.Columns)+1)
	tsBuilder := array.NewInt64Builder(mem)
	tsBuilder.AppendValues(result.Frame.Timestamps, nil)
	builders = append(builders, tsBuilder)

	for _, col := range result.Frame.Columns {
		arrowType, err := arrowTypeFor(col, result)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: col.Name, Type: arrowType, Nullable: true})

		b, err := buildColumn(mem, col, arrowType, result)
		if err != nil {
			return nil, err
		}
		builders = append(builders, b)
	}

	schema := arrow.NewSchema(fields, nil)
	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
		defer arrays[i].Release()
		defer b.Release()
	}

	return array.NewRecord(schema, arrays, int64(result.Frame.NumRows())), nil
}

// arrowTypeFor maps a Column's logical type to its arrow.DataType,
// resolving struct column member types from the schema registry
// carried implicitly by the StructValue instances already present in
// the column (bit-field members become Int64).
func arrowTypeFor(col *Column, result *Result) (arrow.DataType, error) {
	switch col.Type {
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeString:
		return arrow.BinaryTypes.String, nil
	case TypeListBool:
		return arrow.ListOf(arrow.FixedWidthTypes.Boolean), nil
	case TypeListInt64:
		return arrow.ListOf(arrow.PrimitiveTypes.Int64), nil
	case TypeListFloat32:
		return arrow.ListOf(arrow.PrimitiveTypes.Float32), nil
	case TypeListFloat64:
		return arrow.ListOf(arrow.PrimitiveTypes.Float64), nil
	case TypeListString:
		return arrow.ListOf(arrow.BinaryTypes.String), nil
	case TypeStruct:
		return structArrowType(col, result)
	case TypeListStruct:
		st, err := structArrowType(col, result)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(st), nil
	default:
		return arrow.BinaryTypes.String, nil
	}
}

// structArrowType builds the arrow.StructType for a struct/list<struct>
// column by finding the first present value in the column (or, failing
// that, in another column of the same struct name) to read its field
// names and shapes from.
func structArrowType(col *Column, result *Result) (arrow.DataType, error) {
	sample := sampleStructValue(col)
	for _, other := range result.Frame.Columns {
		if sample != nil {
			break
		}
		if other != col && other.StructName == col.StructName {
			sample = sampleStructValue(other)
		}
	}
	if sample == nil {
		return nil, schemaErrorf("struct column %q has no sample value to derive an arrow type from", col.Name)
	}
	st, err := structTypeFromValue(sample)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// structTypeFromValue derives an *arrow.StructType from one decoded
// StructValue's field shapes.
func structTypeFromValue(sv *StructValue) (*arrow.StructType, error) {
	fields := make([]arrow.Field, 0, len(sv.Fields))
	for name, v := range sv.Fields {
		ft, err := fieldValueArrowType(v)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: name, Type: ft, Nullable: false})
	}
	return arrow.StructOf(fields...), nil
}

func sampleStructValue(col *Column) *StructValue {
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		if v.Struct != nil {
			return v.Struct
		}
		for _, sv := range v.StructList {
			if sv != nil {
				return sv
			}
		}
	}
	return nil
}

func fieldValueArrowType(v FieldValue) (arrow.DataType, error) {
	switch v.Kind {
	case FieldBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case FieldChar, FieldUint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case FieldInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case FieldInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case FieldUint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case FieldInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case FieldUint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case FieldInt64, FieldUint64:
		// Bit-fields also arrive as FieldInt64, regardless of the
		// underlying type's signedness.
		return arrow.PrimitiveTypes.Int64, nil
	case FieldFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case FieldFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case FieldArray:
		if len(v.Array) == 0 {
			return arrow.ListOf(arrow.PrimitiveTypes.Int64), nil
		}
		elemType, err := fieldValueArrowType(v.Array[0])
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elemType), nil
	case FieldStructRef:
		if v.Struct == nil {
			return nil, schemaErrorf("nested struct field has no value to derive an arrow type from")
		}
		fields := make([]arrow.Field, 0, len(v.Struct.Fields))
		for name, fv := range v.Struct.Fields {
			ft, err := fieldValueArrowType(fv)
			if err != nil {
				return nil, err
			}
			fields = append(fields, arrow.Field{Name: name, Type: ft, Nullable: false})
		}
		return arrow.StructOf(fields...), nil
	default:
		return arrow.BinaryTypes.String, nil
	}
}

// buildColumn finalizes one Column into an array.Builder populated
// row-by-row, honoring null-at-the-value-level for scalars/lists and
// null-at-the-struct-level for struct columns.
func buildColumn(mem memory.Allocator, col *Column, dt arrow.DataType, result *Result) (array.Builder, error) {
	switch col.Type {
	case TypeFloat64:
		b := array.NewFloat64Builder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.Float64)
			}
		}
		return b, nil
	case TypeFloat32:
		b := array.NewFloat32Builder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.Float32)
			}
		}
		return b, nil
	case TypeInt64:
		b := array.NewInt64Builder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.Int64)
			}
		}
		return b, nil
	case TypeBool:
		b := array.NewBooleanBuilder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.Bool)
			}
		}
		return b, nil
	case TypeString:
		b := array.NewStringBuilder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.String)
			}
		}
		return b, nil
	case TypeListBool:
		lb := array.NewListBuilder(mem, arrow.FixedWidthTypes.Boolean)
		eb := lb.ValueBuilder().(*array.BooleanBuilder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			eb.AppendValues(v.BoolList, nil)
		}
		return lb, nil
	case TypeListInt64:
		lb := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
		eb := lb.ValueBuilder().(*array.Int64Builder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			eb.AppendValues(v.Int64List, nil)
		}
		return lb, nil
	case TypeListFloat32:
		lb := array.NewListBuilder(mem, arrow.PrimitiveTypes.Float32)
		eb := lb.ValueBuilder().(*array.Float32Builder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			eb.AppendValues(v.Float32List, nil)
		}
		return lb, nil
	case TypeListFloat64:
		lb := array.NewListBuilder(mem, arrow.PrimitiveTypes.Float64)
		eb := lb.ValueBuilder().(*array.Float64Builder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			eb.AppendValues(v.Float64List, nil)
		}
		return lb, nil
	case TypeListString:
		lb := array.NewListBuilder(mem, arrow.BinaryTypes.String)
		eb := lb.ValueBuilder().(*array.StringBuilder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			eb.AppendValues(v.StringList, nil)
		}
		return lb, nil
	case TypeStruct:
		structType := dt.(*arrow.StructType)
		sb := array.NewStructBuilder(mem, structType)
		for _, v := range col.Values {
			if v == nil || v.Struct == nil {
				sb.AppendNull()
				continue
			}
			sb.Append(true)
			if err := writeStructFields(sb, structType, v.Struct); err != nil {
				return nil, err
			}
		}
		return sb, nil
	case TypeListStruct:
		structType := dt.(*arrow.ListType).Elem().(*arrow.StructType)
		lb := array.NewListBuilder(mem, structType)
		sb := lb.ValueBuilder().(*array.StructBuilder)
		for _, v := range col.Values {
			if v == nil {
				lb.AppendNull()
				continue
			}
			lb.Append(true)
			for _, sv := range v.StructList {
				sb.Append(true)
				if err := writeStructFields(sb, structType, sv); err != nil {
					return nil, err
				}
			}
		}
		return lb, nil
	default:
		b := array.NewStringBuilder(mem)
		for _, v := range col.Values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(v.String)
			}
		}
		return b, nil
	}
}

// writeStructFields appends one struct instance's field values to an
// already-Append(true)'d StructBuilder, in the struct type's field
// order: fields within a present struct are never null unless a
// nested struct field is itself absent.
func writeStructFields(sb *array.StructBuilder, st *arrow.StructType, sv *StructValue) error {
	for i := 0; i < st.NumFields(); i++ {
		name := st.Field(i).Name
		fv, ok := sv.Fields[name]
		fb := sb.FieldBuilder(i)
		if !ok {
			fb.AppendNull()
			continue
		}
		if err := writeFieldValue(fb, fv); err != nil {
			return err
		}
	}
	return nil
}

// writeFieldValue appends one decoded struct field value to its
// matching array.Builder.
func writeFieldValue(b array.Builder, v FieldValue) error {
	switch vb := b.(type) {
	case *array.BooleanBuilder:
		vb.Append(v.Bool)
	case *array.Uint8Builder:
		if v.Kind == FieldChar {
			vb.Append(v.Char)
		} else {
			vb.Append(uint8(v.Uint))
		}
	case *array.Int8Builder:
		vb.Append(int8(v.Int))
	case *array.Int16Builder:
		vb.Append(int16(v.Int))
	case *array.Uint16Builder:
		vb.Append(uint16(v.Uint))
	case *array.Int32Builder:
		vb.Append(int32(v.Int))
	case *array.Uint32Builder:
		vb.Append(uint32(v.Uint))
	case *array.Int64Builder:
		if v.Kind == FieldUint64 {
			vb.Append(int64(v.Uint))
		} else {
			vb.Append(v.Int)
		}
	case *array.Float32Builder:
		vb.Append(v.Float32)
	case *array.Float64Builder:
		vb.Append(v.Float64)
	case *array.ListBuilder:
		vb.Append(true)
		eb := vb.ValueBuilder()
		for _, elem := range v.Array {
			if err := writeFieldValue(eb, elem); err != nil {
				return err
			}
		}
	case *array.StructBuilder:
		if v.Struct == nil {
			vb.AppendNull()
			return nil
		}
		vb.Append(true)
		st, ok := vb.Type().(*arrow.StructType)
		if !ok {
			return schemaErrorf("nested struct builder has a non-struct type")
		}
		return writeStructFields(vb, st, v.Struct)
	default:
		return schemaErrorf("unsupported arrow builder type for struct field")
	}
	return nil
}

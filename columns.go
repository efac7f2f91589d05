// Copyright (c) 2025 Will Toth

package wpilog

// Value is the decoded payload of one data record, tagged by the
// column's logical type. Exactly one field is meaningful per
// LogicalType, mirroring FieldValue's tagged-union shape for struct
// columns.
type Value struct {
	Type LogicalType

	Bool    bool
	Int64   int64
	Float32 float32
	Float64 float64
	String  string

	BoolList    []bool
	Int64List   []int64
	Float32List []float32
	Float64List []float64
	StringList  []string

	Struct     *StructValue
	StructList []*StructValue
}

// ColumnBuilder accumulates one column's sparse per-row values. push is
// called once per coalesced row with either a decoded Value or nil
// (absent/null); finalize produces the immutable Column.
type ColumnBuilder struct {
	name    string
	logical LogicalType
	structName string
	values  []*Value
}

// NewColumnBuilder returns a builder pre-sized to capacityHint rows.
func NewColumnBuilder(name string, logical LogicalType, structName string, capacityHint int) *ColumnBuilder {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &ColumnBuilder{
		name:       name,
		logical:    logical,
		structName: structName,
		values:     make([]*Value, 0, capacityHint),
	}
}

// push appends one row's value (nil for absent/null) to the column.
func (b *ColumnBuilder) push(v *Value) {
	b.values = append(b.values, v)
}

// Column is a finalized, immutable sparse column: a name, logical
// type, and one value per row in the shared row timeline, with nil
// entries representing null.
type Column struct {
	Name       string
	Type       LogicalType
	StructName string // set when Type is TypeStruct or TypeListStruct
	Values     []*Value
}

func (b *ColumnBuilder) finalize() *Column {
	return &Column{Name: b.name, Type: b.logical, StructName: b.structName, Values: b.values}
}

// DataFrameBuilder holds one ColumnBuilder per declared data column
// plus the coalesced row timeline.
type DataFrameBuilder struct {
	timestamps []int64
	columns    []*ColumnBuilder
}

// NewDataFrameBuilder constructs a builder for the given column
// declarations (name, logical type, struct name when applicable),
// each pre-sized by capacityHint rows.
func NewDataFrameBuilder(cols []columnDecl, capacityHint int) *DataFrameBuilder {
	builders := make([]*ColumnBuilder, len(cols))
	for i, c := range cols {
		builders[i] = NewColumnBuilder(c.Name, c.Logical, c.StructName, capacityHint)
	}
	return &DataFrameBuilder{
		timestamps: make([]int64, 0, capacityHint),
		columns:    builders,
	}
}

// pushRow appends a coalesced row: its timestamp, and one value (or
// nil) per declared column, in column order.
func (b *DataFrameBuilder) pushRow(ts int64, values []*Value) {
	b.timestamps = append(b.timestamps, ts)
	for i, v := range values {
		b.columns[i].push(v)
	}
}

// DataFrame is the finalized columnar output: a leading i64 timestamp
// column followed by the declared columns in Pass-1 order.
type DataFrame struct {
	Timestamps []int64
	Columns    []*Column
}

func (b *DataFrameBuilder) build() *DataFrame {
	cols := make([]*Column, len(b.columns))
	for i, c := range b.columns {
		cols[i] = c.finalize()
	}
	return &DataFrame{Timestamps: b.timestamps, Columns: cols}
}

// NumRows reports the number of coalesced rows in the frame.
func (f *DataFrame) NumRows() int { return len(f.Timestamps) }

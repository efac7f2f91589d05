// Copyright (c) 2025 Will Toth

package wpilog

// columnDecl is a Pass-1 data-column declaration: the entry id that
// feeds it, its declared name/type, and any metadata.
type columnDecl struct {
	EntryID    uint32
	Name       string
	Logical    LogicalType
	StructName string
	Metadata   string
}

// ColumnInfo is the public name/type half of a columnDecl, exposed via
// Schema/InferSchema.
type ColumnInfo struct {
	Name string
	Type LogicalType
	// StructName is set when Type is TypeStruct or TypeListStruct.
	StructName string
}

// Schema is the Pass-1-only schema descriptor: column declarations in
// the order they will appear in the DataFrame, timestamp excluded.
type Schema struct {
	Columns []ColumnInfo
}

// Options configures a conversion run: no environment variables or
// persisted state, only explicit options.
type Options struct {
	// Diagnostics receives non-fatal warning text: unknown type
	// strings, cyclic/missing struct dependencies, a generic struct
	// type with no name. Defaults to writing to stderr.
	Diagnostics func(string)

	// CapacityDivisor overrides the row-count capacity-hint divisor
	// (default 25).
	CapacityDivisor int
}

// Option mutates Options; a functional-option constructor pattern.
type Option func(*Options)

// WithDiagnostics overrides the warning sink.
func WithDiagnostics(fn func(string)) Option {
	return func(o *Options) { o.Diagnostics = fn }
}

// WithCapacityDivisor overrides the row-count capacity-hint divisor.
func WithCapacityDivisor(n int) Option {
	return func(o *Options) { o.CapacityDivisor = n }
}

func defaultOptions() *Options {
	return &Options{
		Diagnostics:     defaultDiagnostics,
		CapacityDivisor: 25,
	}
}

func resolveOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	if o.Diagnostics == nil {
		o.Diagnostics = defaultDiagnostics
	}
	if o.CapacityDivisor <= 0 {
		o.CapacityDivisor = 25
	}
	return o
}

// pass1Result is everything schema discovery produces: the ordered
// data-column declarations, the frozen struct registry, and the set of
// struct names that failed to resolve (degraded to string).
type pass1Result struct {
	columns          []columnDecl
	registry         *StructRegistry
	degradedStructs  map[string]bool
}

// runPass1 walks the record stream once, collecting struct-schema
// definitions and data-column declarations while honoring entry
// finish/reuse, then resolves the struct dependency DAG.
func runPass1(data []byte, opts *Options) (*pass1Result, error) {
	scanner, err := NewFrameScanner(data)
	if err != nil {
		return nil, err
	}

	var columns []columnDecl
	schemaEntries := make(map[uint32]string) // entry id -> struct name
	schemaTexts := make(map[string]string)   // struct name -> last-write-wins text
	finished := make(map[uint32]bool)
	seenColumnEntry := make(map[uint32]bool)

	for scanner.Next() {
		rec := scanner.Record()

		if rec.EntryID == controlEntryID {
			kind, ok := decodeControlKind(rec.Payload)
			if !ok {
				continue
			}
			switch kind {
			case controlStart:
				start, err := decodeStart(rec.Payload)
				if err != nil {
					return nil, err
				}
				if structName, ok := isStructSchemaEntry(start.Name, start.Type); ok {
					schemaEntries[start.Entry] = structName
					continue
				}
				if finished[start.Entry] {
					continue
				}
				logical, known := classifyType(start.Type)
				if !known {
					opts.Diagnostics("unknown wpilog type string " + start.Type + " degraded to string")
				}
				if logical.Logical == TypeStruct && logical.StructName == "" {
					opts.Diagnostics("generic struct type with no name on entry " + start.Name)
				}
				columns = append(columns, columnDecl{
					EntryID:    start.Entry,
					Name:       start.Name,
					Logical:    logical.Logical,
					StructName: logical.StructName,
					Metadata:   start.Metadata,
				})
				seenColumnEntry[start.Entry] = true
			case controlFinish:
				fin, err := decodeFinish(rec.Payload)
				if err != nil {
					return nil, err
				}
				finished[fin.Entry] = true
			case controlSetMetadata:
				if _, err := decodeSetMetadata(rec.Payload); err != nil {
					return nil, err
				}
			}
			continue
		}

		if structName, ok := schemaEntries[rec.EntryID]; ok {
			schemaTexts[structName] = toUTF8Lossy(rec.Payload)
		}
	}

	if len(columns) == 0 {
		return nil, schemaErrorf("no columns")
	}

	registry := NewStructRegistry()
	unresolved := registry.resolveStructDependencies(schemaTexts)
	degraded := make(map[string]bool, len(unresolved))
	for _, name := range unresolved {
		opts.Diagnostics("struct " + name + " has a cyclic or missing dependency; degrading to string")
		degraded[name] = true
	}

	return &pass1Result{columns: columns, registry: registry, degradedStructs: degraded}, nil
}

// effectiveLogical returns the logical type a column decodes to in
// Pass 2, degrading struct/list-struct columns whose schema never
// resolved to TypeString.
func (p *pass1Result) effectiveLogical(c columnDecl) LogicalType {
	if (c.Logical == TypeStruct || c.Logical == TypeListStruct) && p.degradedStructs[c.StructName] {
		return TypeString
	}
	return c.Logical
}

// runPass2 walks the record stream a second time, decoding data
// records by column and coalescing same-timestamp records into rows.
func runPass2(data []byte, pass1 *pass1Result, opts *Options) (*DataFrame, error) {
	scanner, err := NewFrameScanner(data)
	if err != nil {
		return nil, err
	}

	entryToIndex := make(map[uint32]int, len(pass1.columns))
	colDecls := make([]columnDecl, len(pass1.columns))
	for i, c := range pass1.columns {
		entryToIndex[c.EntryID] = i
		c.Logical = pass1.effectiveLogical(c)
		colDecls[i] = c
	}

	deserializer := NewStructDeserializer(pass1.registry)
	builder := NewDataFrameBuilder(colDecls, capacityHintWithDivisor(len(data), opts.CapacityDivisor))

	finished := make(map[uint32]bool)
	var currentTS *int64
	currentValues := make([]*Value, len(colDecls))

	flush := func() {
		builder.pushRow(*currentTS, currentValues)
		currentValues = make([]*Value, len(colDecls))
	}

	for scanner.Next() {
		rec := scanner.Record()

		if rec.EntryID == controlEntryID {
			kind, ok := decodeControlKind(rec.Payload)
			if !ok {
				continue
			}
			if kind == controlFinish {
				fin, err := decodeFinish(rec.Payload)
				if err != nil {
					return nil, err
				}
				finished[fin.Entry] = true
			}
			continue
		}

		if finished[rec.EntryID] {
			continue
		}
		idx, ok := entryToIndex[rec.EntryID]
		if !ok {
			continue
		}

		ts := int64(rec.Timestamp)
		if currentTS == nil {
			currentTS = &ts
		} else if *currentTS != ts {
			flush()
			currentTS = &ts
		}

		val, err := decodePayload(colDecls[idx], rec, deserializer)
		if err != nil {
			return nil, err
		}
		currentValues[idx] = val
	}

	if currentTS != nil {
		flush()
	}

	return builder.build(), nil
}

func capacityHintWithDivisor(inputLen, divisor int) int {
	if divisor <= 0 {
		divisor = 25
	}
	return inputLen / divisor
}

// inferSchema runs Pass 1 only and returns its public Schema
// descriptor.
func inferSchema(data []byte, opts *Options) (*Schema, error) {
	p1, err := runPass1(data, opts)
	if err != nil {
		return nil, err
	}
	cols := make([]ColumnInfo, len(p1.columns))
	for i, c := range p1.columns {
		cols[i] = ColumnInfo{
			Name:       c.Name,
			Type:       p1.effectiveLogical(c),
			StructName: c.StructName,
		}
	}
	return &Schema{Columns: cols}, nil
}

// convert runs the full two-pass conversion, returning both the
// resulting DataFrame and the Pass-1 schema it was built from.
func convert(data []byte, opts *Options) (*Schema, *DataFrame, error) {
	p1, err := runPass1(data, opts)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]ColumnInfo, len(p1.columns))
	for i, c := range p1.columns {
		cols[i] = ColumnInfo{Name: c.Name, Type: p1.effectiveLogical(c), StructName: c.StructName}
	}
	frame, err := runPass2(data, p1, opts)
	if err != nil {
		return nil, nil, err
	}
	return &Schema{Columns: cols}, frame, nil
}

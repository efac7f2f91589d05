// Copyright (c) 2025 Will Toth

package wpilog

// StructRegistry holds laid-out struct schemas, keyed by name, and
// resolves the dependency DAG among pending schema texts. It is built
// once in Pass 1 and read-only thereafter.
type StructRegistry struct {
	schemas map[string]*StructSchema
}

// NewStructRegistry returns an empty registry.
func NewStructRegistry() *StructRegistry {
	return &StructRegistry{schemas: make(map[string]*StructSchema)}
}

// Get returns the registered schema for name, if any.
func (r *StructRegistry) Get(name string) (*StructSchema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// register parses schemaText and computes its layout, resolving any
// nested struct_ref fields against already-registered schemas. It
// returns ErrSchema (wrapped) if a nested struct is not yet
// registered, so the caller can retry on a later fixpoint pass.
func (r *StructRegistry) register(name, schemaText string) error {
	decls, err := parseStructSchemaText(schemaText)
	if err != nil {
		return err
	}
	fields, totalSize, err := r.layoutFields(decls)
	if err != nil {
		return err
	}
	r.schemas[name] = &StructSchema{Name: name, Fields: fields, TotalSize: totalSize}
	return nil
}

// layoutFields computes byte offsets for a declaration list, applying
// the packed C-struct bit-field rules (no padding, maximal runs of
// same-typed bit-fields share a storage unit).
func (r *StructRegistry) layoutFields(decls []FieldDecl) ([]StructField, int, error) {
	var out []StructField
	offset := 0
	var pending []FieldDecl

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		packed, next, err := packBitfields(pending, offset)
		if err != nil {
			return err
		}
		out = append(out, packed...)
		offset = next
		pending = nil
		return nil
	}

	for _, decl := range decls {
		if decl.IsBitfield {
			pending = append(pending, decl)
			continue
		}
		if err := flush(); err != nil {
			return nil, 0, err
		}
		size, err := r.fieldSize(decl)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, StructField{Standard: &StandardField{
			Name:       decl.Name,
			Kind:       decl.Kind,
			ArrayLen:   decl.ArrayLen,
			ElemKind:   decl.ElemKind,
			StructName: decl.StructName,
			Offset:     offset,
			Size:       size,
			Enum:       decl.Enum,
		}})
		offset += size
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}
	return out, offset, nil
}

// fieldSize returns the byte size of a standard field declaration,
// recursing into the registry for struct references and fixed arrays.
func (r *StructRegistry) fieldSize(decl FieldDecl) (int, error) {
	if decl.Kind == FieldArray {
		elemSize, err := r.scalarOrStructSize(decl.ElemKind, decl.StructName)
		if err != nil {
			return 0, err
		}
		return elemSize * decl.ArrayLen, nil
	}
	return r.scalarOrStructSize(decl.Kind, decl.StructName)
}

func (r *StructRegistry) scalarOrStructSize(kind FieldKind, structName string) (int, error) {
	if kind == FieldStructRef {
		nested, ok := r.Get(structName)
		if !ok {
			return 0, schemaErrorf("nested struct %q not yet registered", structName)
		}
		return nested.TotalSize, nil
	}
	return kind.primitiveSize(), nil
}

// packBitfields groups maximal runs of consecutive bit-fields sharing
// an underlying integer type, computes the storage units each run
// consumes, and assigns each field its storage offset and in-unit bit
// offset, mirroring a C compiler's packed (no-padding) layout.
func packBitfields(decls []FieldDecl, startOffset int) ([]StructField, int, error) {
	var out []StructField
	offset := startOffset
	i := 0
	for i < len(decls) {
		t := decls[i].IntType
		j := i + 1
		for j < len(decls) && decls[j].IntType == t {
			j++
		}
		group := decls[i:j]

		width := t.bits()
		size := t.bytes()
		totalBits := 0
		for _, d := range group {
			totalBits += d.BitWidth
		}
		numUnits := ceilDiv(totalBits, width)

		bitOffset := 0
		for _, d := range group {
			startUnit := bitOffset / width
			endBit := bitOffset + d.BitWidth
			endUnit := (endBit - 1) / width
			out = append(out, StructField{Bit: &BitField{
				Name:            d.Name,
				IntType:         t,
				BitWidth:        d.BitWidth,
				StorageOffset:   offset + startUnit*size,
				BitOffsetInUnit: bitOffset % width,
				SpansUnits:      endUnit > startUnit,
				Enum:            d.Enum,
			}})
			bitOffset += d.BitWidth
		}
		offset += numUnits * size
		i = j
	}
	return out, offset, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// resolveStructDependencies runs a fixpoint registration loop: repeatedly
// attempt to register every not-yet-registered schema text, stopping
// when a pass makes no progress. It returns the names that remain
// unresolved (cyclic or missing dependency), which the caller should
// warn about and degrade to string columns.
func (r *StructRegistry) resolveStructDependencies(schemaTexts map[string]string) []string {
	registered := make(map[string]bool, len(schemaTexts))
	for {
		progressed := false
		for name, text := range schemaTexts {
			if registered[name] {
				continue
			}
			if err := r.register(name, text); err == nil {
				registered[name] = true
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	var unresolved []string
	for name := range schemaTexts {
		if !registered[name] {
			unresolved = append(unresolved, name)
		}
	}
	return unresolved
}

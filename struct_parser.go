// Copyright (c) 2025 Will Toth

package wpilog

import (
	"strconv"
	"strings"
)

// parseStructSchemaText parses a `;`-separated list of C-like field
// declarations into an ordered slice of FieldDecl. Empty
// declarations (consecutive or trailing semicolons) are ignored.
func parseStructSchemaText(text string) ([]FieldDecl, error) {
	var decls []FieldDecl
	for _, part := range strings.Split(text, ";") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		decl, err := parseDeclaration(trimmed)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// parseDeclaration parses one declaration, dispatching to the
// bit-field or standard-field grammar based on the presence of `:`
// after any enum-spec prefix is stripped.
func parseDeclaration(decl string) (FieldDecl, error) {
	enumSpec, rest, err := extractEnumSpec(decl)
	if err != nil {
		return FieldDecl{}, err
	}
	rest = strings.TrimSpace(rest)

	if strings.Contains(rest, ":") {
		return parseBitfieldDeclaration(rest, enumSpec)
	}
	return parseStandardDeclaration(rest, enumSpec)
}

// parseStandardDeclaration parses `TYPE NAME` or `TYPE NAME[LENGTH]`.
func parseStandardDeclaration(rest string, enumSpec *EnumSpec) (FieldDecl, error) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return FieldDecl{}, parseErrorf("invalid struct field declaration: %q", rest)
	}
	typeStr := fields[0]
	nameAndArray := strings.Join(fields[1:], " ")

	bracket := strings.IndexByte(nameAndArray, '[')
	if bracket < 0 {
		kind, structName, err := parseFieldKind(typeStr)
		if err != nil {
			return FieldDecl{}, err
		}
		return FieldDecl{
			Name:       strings.TrimSpace(nameAndArray),
			Enum:       enumSpec,
			Kind:       kind,
			StructName: structName,
		}, nil
	}

	if !strings.HasSuffix(nameAndArray, "]") {
		return FieldDecl{}, parseErrorf("invalid array syntax: %q", nameAndArray)
	}
	name := strings.TrimSpace(nameAndArray[:bracket])
	lenStr := strings.TrimSpace(nameAndArray[bracket+1 : len(nameAndArray)-1])
	length, err := strconv.Atoi(lenStr)
	if err != nil || length <= 0 {
		return FieldDecl{}, parseErrorf("invalid array length %q", lenStr)
	}

	elemKind, structName, err := parseFieldKind(typeStr)
	if err != nil {
		return FieldDecl{}, err
	}
	if elemKind == FieldArray {
		return FieldDecl{}, parseErrorf("arrays of arrays are not supported: %q", rest)
	}

	return FieldDecl{
		Name:       name,
		Enum:       enumSpec,
		Kind:       FieldArray,
		ArrayLen:   length,
		ElemKind:   elemKind,
		StructName: structName,
	}, nil
}

// parseBitfieldDeclaration parses `INT_TYPE NAME : BITS`.
func parseBitfieldDeclaration(rest string, enumSpec *EnumSpec) (FieldDecl, error) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return FieldDecl{}, parseErrorf("invalid bit-field declaration: %q", rest)
	}
	left := strings.TrimSpace(parts[0])
	bitsStr := strings.TrimSpace(parts[1])

	bitWidth, err := strconv.Atoi(bitsStr)
	if err != nil || bitWidth < 1 {
		return FieldDecl{}, parseErrorf("invalid bit-field width %q", bitsStr)
	}

	fields := strings.Fields(left)
	if len(fields) < 2 {
		return FieldDecl{}, parseErrorf("invalid bit-field declaration: %q", rest)
	}
	typeStr := fields[0]
	name := strings.Join(fields[1:], " ")

	intType, err := parseIntType(typeStr)
	if err != nil {
		return FieldDecl{}, err
	}
	maxBits := intType.bits()
	if intType == IntBool {
		maxBits = 8 // legal 1..8 on bool despite 8-bit storage
	}
	if bitWidth > maxBits {
		return FieldDecl{}, parseErrorf("bit-field %q width %d exceeds type width %d", name, bitWidth, maxBits)
	}

	return FieldDecl{
		Name:       name,
		Enum:       enumSpec,
		IsBitfield: true,
		IntType:    intType,
		BitWidth:   bitWidth,
	}, nil
}

// extractEnumSpec strips a leading `enum{...}` or bare `{...}` prefix
// from decl and returns the parsed spec alongside the remaining text.
func extractEnumSpec(decl string) (*EnumSpec, string, error) {
	trimmed := strings.TrimSpace(decl)

	var braceStart int
	switch {
	case strings.HasPrefix(trimmed, "enum"):
		idx := strings.IndexByte(trimmed, '{')
		if idx < 0 {
			return nil, "", parseErrorf("enum keyword without braces: %q", decl)
		}
		braceStart = idx
	case strings.HasPrefix(trimmed, "{"):
		braceStart = 0
	default:
		return nil, trimmed, nil
	}

	braceEnd := strings.IndexByte(trimmed, '}')
	if braceEnd < 0 {
		return nil, "", parseErrorf("unclosed enum specification: %q", decl)
	}

	spec, err := parseEnumSpecText(trimmed[braceStart : braceEnd+1])
	if err != nil {
		return nil, "", err
	}
	return spec, trimmed[braceEnd+1:], nil
}

// parseEnumSpecText parses `{ID=INT, ID=INT, ...}` into an EnumSpec.
func parseEnumSpecText(text string) (*EnumSpec, error) {
	inner := strings.TrimSpace(text)
	inner = strings.TrimPrefix(inner, "{")
	inner = strings.TrimSuffix(inner, "}")
	inner = strings.TrimSpace(inner)

	values := make(map[int64]string)
	if inner == "" {
		return &EnumSpec{Values: values}, nil
	}

	for _, entry := range strings.Split(inner, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			return nil, parseErrorf("invalid enum entry %q", entry)
		}
		name := strings.TrimSpace(entry[:eq])
		valStr := strings.TrimSpace(entry[eq+1:])
		val, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			return nil, parseErrorf("invalid enum value %q", valStr)
		}
		values[val] = name
	}
	return &EnumSpec{Values: values}, nil
}

// parseFieldKind maps a standard-field TYPE token to a FieldKind, or
// treats it as a struct reference when it is not one of the scalar
// keywords.
func parseFieldKind(typeStr string) (kind FieldKind, structName string, err error) {
	switch typeStr {
	case "bool":
		return FieldBool, "", nil
	case "char":
		return FieldChar, "", nil
	case "int8":
		return FieldInt8, "", nil
	case "int16":
		return FieldInt16, "", nil
	case "int32":
		return FieldInt32, "", nil
	case "int64":
		return FieldInt64, "", nil
	case "uint8":
		return FieldUint8, "", nil
	case "uint16":
		return FieldUint16, "", nil
	case "uint32":
		return FieldUint32, "", nil
	case "uint64":
		return FieldUint64, "", nil
	case "float", "float32":
		return FieldFloat32, "", nil
	case "double", "float64":
		return FieldFloat64, "", nil
	default:
		return FieldStructRef, typeStr, nil
	}
}

// parseIntType maps a bit-field INT_TYPE token, excluding char and the
// floating-point kinds.
func parseIntType(typeStr string) (IntType, error) {
	switch typeStr {
	case "bool":
		return IntBool, nil
	case "int8":
		return IntInt8, nil
	case "int16":
		return IntInt16, nil
	case "int32":
		return IntInt32, nil
	case "int64":
		return IntInt64, nil
	case "uint8":
		return IntUint8, nil
	case "uint16":
		return IntUint16, nil
	case "uint32":
		return IntUint32, nil
	case "uint64":
		return IntUint64, nil
	default:
		return 0, parseErrorf("invalid bit-field integer type %q", typeStr)
	}
}

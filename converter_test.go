// Copyright (c) 2025 Will Toth

package wpilog_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/willtoth/wpilog-go"
	"math"
)

var _ = Describe("Parse", func() {
	Context("scalar columns", func() {
		It("decodes double, int64, boolean and string entries into one coalesced row", func() {
			data := buildLog(
				startRecord(0, 1, "/voltage", "double", ""),
				startRecord(0, 2, "/count", "int64", ""),
				startRecord(0, 3, "/enabled", "boolean", ""),
				startRecord(0, 4, "/mode", "string", ""),
				frameRecord(1, 100, leU64(math.Float64bits(12.5))),
				frameRecord(2, 100, leU64Signed(42)),
				frameRecord(3, 100, []byte{1}),
				frameRecord(4, 100, []byte("auto")),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Schema.Columns).To(HaveLen(4))
			Expect(result.Frame.NumRows()).To(Equal(1))
			Expect(result.Frame.Timestamps[0]).To(Equal(int64(100)))

			Expect(result.Frame.Columns[0].Values[0].Float64).To(Equal(12.5))
			Expect(result.Frame.Columns[1].Values[0].Int64).To(Equal(int64(42)))
			Expect(result.Frame.Columns[2].Values[0].Bool).To(BeTrue())
			Expect(result.Frame.Columns[3].Values[0].String).To(Equal("auto"))
		})

		It("coalesces updates at distinct timestamps into separate rows", func() {
			data := buildLog(
				startRecord(0, 1, "/x", "int64", ""),
				frameRecord(1, 10, leU64Signed(1)),
				frameRecord(1, 20, leU64Signed(2)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Frame.NumRows()).To(Equal(2))
			Expect(result.Frame.Timestamps).To(Equal([]int64{10, 20}))
			Expect(result.Frame.Columns[0].Values[0].Int64).To(Equal(int64(1)))
			Expect(result.Frame.Columns[0].Values[1].Int64).To(Equal(int64(2)))
		})

		It("leaves untouched columns nil (sparse) within a coalesced row", func() {
			data := buildLog(
				startRecord(0, 1, "/a", "int64", ""),
				startRecord(0, 2, "/b", "int64", ""),
				frameRecord(1, 10, leU64Signed(7)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Frame.NumRows()).To(Equal(1))
			Expect(result.Frame.Columns[0].Values[0]).ToNot(BeNil())
			Expect(result.Frame.Columns[1].Values[0]).To(BeNil())
		})
	})

	Context("finish semantics", func() {
		It("stops routing data to an entry once it is finished", func() {
			data := buildLog(
				startRecord(0, 1, "/x", "int64", ""),
				frameRecord(1, 10, leU64Signed(1)),
				finishRecord(15, 1),
				frameRecord(1, 20, leU64Signed(99)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Frame.NumRows()).To(Equal(1))
			Expect(result.Frame.Columns[0].Values[0].Int64).To(Equal(int64(1)))
		})

		It("does not add a second column for the same id redeclared after its own Finish", func() {
			// Matches the reference implementation's literal finished_entries
			// handling (see DESIGN.md Open Question Decisions): once an id has
			// been finished, a later Start for that exact id is not re-added.
			data := buildLog(
				startRecord(0, 1, "/x", "int64", ""),
				finishRecord(5, 1),
				startRecord(10, 1, "/x-v2", "int64", ""),
			)

			schema, err := wpilog.InferSchema(data)
			Expect(err).To(BeNil())
			Expect(schema.Columns).To(HaveLen(1))
			Expect(schema.Columns[0].Name).To(Equal("/x"))
		})

		It("adds a new column for a previously unused id started after unrelated ids finished", func() {
			data := buildLog(
				startRecord(0, 1, "/x", "int64", ""),
				finishRecord(5, 1),
				startRecord(10, 2, "/y", "int64", ""),
			)

			schema, err := wpilog.InferSchema(data)
			Expect(err).To(BeNil())
			Expect(schema.Columns).To(HaveLen(2))
		})
	})

	Context("list columns", func() {
		It("decodes an int64[] payload", func() {
			data := buildLog(
				startRecord(0, 1, "/samples", "int64[]", ""),
				frameRecord(1, 0, append(leU64Signed(1), append(leU64Signed(2), leU64Signed(3)...)...)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Frame.Columns[0].Values[0].Int64List).To(Equal([]int64{1, 2, 3}))
		})
	})

	Context("struct columns", func() {
		It("decodes a packed struct with a bit-field group via the struct-schema entry", func() {
			schemaText := "int8 a:4;int8 b:4;double x"
			data := buildLog(
				startRecord(0, 1, "Packed", "structschema", ""),
				frameRecord(1, 0, []byte(schemaText)),
				startRecord(0, 2, "/packed", "struct:Packed", ""),
				frameRecord(2, 0, structPayload(0x3, 0x5, 2.5)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Schema.Columns[0].Type).To(Equal(wpilog.TypeStruct))
			sv := result.Frame.Columns[0].Values[0].Struct
			Expect(sv).ToNot(BeNil())
			Expect(sv.Fields["a"].Int).To(Equal(int64(0x3)))
			Expect(sv.Fields["b"].Int).To(Equal(int64(0x5)))
			Expect(sv.Fields["x"].Float64).To(Equal(2.5))
		})

		It("degrades a struct with a missing nested dependency to a string column", func() {
			// "A" declares a nested field of type "B", but "B" is never
			// declared: the fixpoint resolution loop in struct_layout.go
			// leaves "A" unresolved and it degrades to string, distinct
			// from a column referencing a struct name that was never
			// declared at all, which is a hard SchemaError (below).
			data := buildLog(
				startRecord(0, 1, "A", "structschema", ""),
				frameRecord(1, 0, []byte("B nested")),
				startRecord(0, 2, "/thing", "struct:A", ""),
				frameRecord(2, 0, []byte{1, 2, 3, 4}),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Schema.Columns[0].Type).To(Equal(wpilog.TypeString))
		})

		It("fails with a schema error when a column references a struct name with no declaration at all", func() {
			data := buildLog(
				startRecord(0, 1, "/mystery", "struct:Missing", ""),
				frameRecord(1, 0, []byte{1, 2, 3}),
			)

			_, err := wpilog.Parse(data)
			Expect(errors.Is(err, wpilog.ErrSchema)).To(BeTrue())
		})

		It("decodes a list<struct<N>> column from contiguous fixed-size struct payloads", func() {
			schemaText := "double x;double y"
			data := buildLog(
				startRecord(0, 1, "Point", "structschema", ""),
				frameRecord(1, 0, []byte(schemaText)),
				startRecord(0, 2, "/points", "struct:Point[]", ""),
				frameRecord(2, 0, pointsPayload(1, 2, 3, 4, 5, 6)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			Expect(result.Schema.Columns[0].Type).To(Equal(wpilog.TypeListStruct))

			list := result.Frame.Columns[0].Values[0].StructList
			Expect(list).To(HaveLen(3))
			Expect(list[0].Fields["x"].Float64).To(Equal(1.0))
			Expect(list[0].Fields["y"].Float64).To(Equal(2.0))
			Expect(list[1].Fields["x"].Float64).To(Equal(3.0))
			Expect(list[1].Fields["y"].Float64).To(Equal(4.0))
			Expect(list[2].Fields["x"].Float64).To(Equal(5.0))
			Expect(list[2].Fields["y"].Float64).To(Equal(6.0))
		})

		It("rejects a list<struct<N>> payload whose length is not a multiple of the struct size", func() {
			schemaText := "double x;double y"
			data := buildLog(
				startRecord(0, 1, "Point", "structschema", ""),
				frameRecord(1, 0, []byte(schemaText)),
				startRecord(0, 2, "/points", "struct:Point[]", ""),
				frameRecord(2, 0, append(pointsPayload(1, 2, 3, 4), 0, 0, 0, 0)), // 36 is not a multiple of 16
			)

			_, err := wpilog.Parse(data)
			Expect(errors.Is(err, wpilog.ErrParse)).To(BeTrue())
		})

		It("decodes a nested struct reference and a fixed array of struct references", func() {
			// "Line" nests a single "Point" and carries a fixed [2]Point array,
			// exercising struct_ref scalar fields and arrays of struct
			// references in one declaration.
			data := buildLog(
				startRecord(0, 1, "Point", "structschema", ""),
				frameRecord(1, 0, []byte("double x;double y")),
				startRecord(0, 2, "Line", "structschema", ""),
				frameRecord(2, 0, []byte("Point origin;Point ends[2]")),
				startRecord(0, 3, "/line", "struct:Line", ""),
				frameRecord(3, 0, append(pointBytes(1, 2), append(pointBytes(3, 4), pointBytes(5, 6)...)...)),
			)

			result, err := wpilog.Parse(data)
			Expect(err).To(BeNil())
			sv := result.Frame.Columns[0].Values[0].Struct
			Expect(sv).ToNot(BeNil())
			Expect(sv.Fields["origin"].Struct.Fields["x"].Float64).To(Equal(1.0))
			Expect(sv.Fields["origin"].Struct.Fields["y"].Float64).To(Equal(2.0))
			ends := sv.Fields["ends"].Array
			Expect(ends).To(HaveLen(2))
			Expect(ends[0].Struct.Fields["x"].Float64).To(Equal(3.0))
			Expect(ends[1].Struct.Fields["x"].Float64).To(Equal(5.0))
		})
	})

	Context("error paths", func() {
		It("rejects a file with bad magic", func() {
			_, err := wpilog.Parse([]byte("NOTWPILOG000000"))
			Expect(errors.Is(err, wpilog.ErrInvalidFormat)).To(BeTrue())
		})

		It("rejects a stream with zero data columns", func() {
			data := buildLog() // header only
			_, err := wpilog.Parse(data)
			Expect(errors.Is(err, wpilog.ErrSchema)).To(BeTrue())
		})
	})
})

// leU64Signed encodes a signed int64 as its 8-byte little-endian bit
// pattern, matching the wire encoding payload.go's decodePayload expects
// for int64 columns.
func leU64Signed(v int64) []byte {
	return leU64(uint64(v))
}

// structPayload packs {a:4 bits, b:4 bits} into one storage byte followed
// by a float64, matching "int8 a:4;int8 b:4;double x": the bit-field
// group occupies one byte at offset 0 (ceil(8 bits / 8-bit type) = 1
// storage unit), and x immediately follows at offset 1 with no padding
// (packed, not aligned), for a total size of 9.
func structPayload(a, b byte, x float64) []byte {
	packed := (a & 0xF) | ((b & 0xF) << 4)
	out := []byte{packed}
	out = append(out, leU64(math.Float64bits(x))...)
	return out
}

// pointBytes packs one "double x;double y" struct instance.
func pointBytes(x, y float64) []byte {
	out := leU64(math.Float64bits(x))
	out = append(out, leU64(math.Float64bits(y))...)
	return out
}

// pointsPayload packs pairs of (x, y) coordinates into consecutive
// "double x;double y" struct instances, for list<struct<N>> payloads.
func pointsPayload(coords ...float64) []byte {
	var out []byte
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, pointBytes(coords[i], coords[i+1])...)
	}
	return out
}

// Copyright (c) 2025 Will Toth

package wpilog_test

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/willtoth/wpilog-go"
)

var _ = Describe("ToArrow", func() {
	It("builds a record batch with a timestamp column plus one field per data column", func() {
		data := buildLog(
			startRecord(0, 1, "/voltage", "double", ""),
			startRecord(0, 2, "/enabled", "boolean", ""),
			frameRecord(1, 100, leU64(math.Float64bits(3.25))),
			frameRecord(2, 100, []byte{1}),
		)

		result, err := wpilog.Parse(data)
		Expect(err).To(BeNil())

		rec, err := wpilog.ToArrow(result)
		Expect(err).To(BeNil())
		defer rec.Release()

		Expect(rec.NumRows()).To(Equal(int64(1)))
		Expect(rec.NumCols()).To(Equal(int64(3))) // timestamp + 2 data columns
		Expect(rec.ColumnName(0)).To(Equal("timestamp"))
		Expect(rec.ColumnName(1)).To(Equal("/voltage"))
		Expect(rec.ColumnName(2)).To(Equal("/enabled"))
	})

	It("builds a struct-typed column from decoded struct values", func() {
		data := buildLog(
			startRecord(0, 1, "Packed", "structschema", ""),
			frameRecord(1, 0, []byte("int8 a:4;int8 b:4;double x")),
			startRecord(0, 2, "/packed", "struct:Packed", ""),
			frameRecord(2, 0, packedStructBytes(3, 5, 2.5)),
		)

		result, err := wpilog.Parse(data)
		Expect(err).To(BeNil())

		rec, err := wpilog.ToArrow(result)
		Expect(err).To(BeNil())
		defer rec.Release()

		Expect(rec.NumRows()).To(Equal(int64(1)))
		_, isStruct := rec.Schema().Field(1).Type.(*arrow.StructType)
		Expect(isStruct).To(BeTrue())
	})
})

func packedStructBytes(a, b byte, x float64) []byte {
	packed := (a & 0xF) | ((b & 0xF) << 4)
	out := []byte{packed}
	out = append(out, leU64(math.Float64bits(x))...)
	return out
}

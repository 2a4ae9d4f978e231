package qrscan_test

import (
	"testing"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/binarizer"
	"github.com/ericlevine/qrscan/internal/qrtest"
)

var decodeBenchmarks = []struct {
	name       string
	content    string
	level      qrtest.Level
	moduleSize int
}{
	{"Version1", "Hello", qrtest.LevelM, 4},
	{"LevelH", "Hello, World! This is a QR code benchmark test with enough text to need a mid-size symbol. 0123456789 0123456789", qrtest.LevelH, 3},
	{"Numeric", "31415926535897932384626433832795028841971693993751", qrtest.LevelL, 4},
}

func BenchmarkDecode(b *testing.B) {
	for _, tc := range decodeBenchmarks {
		b.Run(tc.name, func(b *testing.B) {
			img := renderImage(b, tc.content, tc.level, tc.moduleSize)
			opts := &qrscan.DecodeOptions{
				PossibleFormats: []qrscan.Format{qrscan.FormatQRCode},
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				source := qrscan.NewImageLuminanceSource(img)
				bitmap := qrscan.NewBinaryBitmap(binarizer.NewHybrid(source))
				if _, err := qrscan.Decode(bitmap, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodePure(b *testing.B) {
	symbol, _ := qrtest.Symbol(b, "pure barcode benchmark", qrtest.LevelQ)
	bitmap := qrscan.NewBinaryBitmapFromMatrix(qrtest.Render(symbol, 3, 4))
	opts := &qrscan.DecodeOptions{PureBarcode: true}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := qrscan.Decode(bitmap, opts); err != nil {
			b.Fatal(err)
		}
	}
}

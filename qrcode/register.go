package qrcode

import qrscan "github.com/ericlevine/qrscan"

func init() {
	qrscan.RegisterReader(qrscan.FormatQRCode, func(*qrscan.DecodeOptions) qrscan.Reader {
		return NewReader()
	})
}

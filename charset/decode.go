package charset

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Decode converts data from enc to a UTF-8 string.
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("charset: decode: %w", err)
	}
	return string(out), nil
}

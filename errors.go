package qrscan

import "errors"

var (
	// ErrNotFound is returned when no QR Code symbol could be located.
	ErrNotFound = errors.New("qr code not found")

	// ErrChecksum is returned when error correction could not repair a block.
	ErrChecksum = errors.New("checksum error")

	// ErrFormat is returned when a located symbol violates the format rules.
	ErrFormat = errors.New("format error")
)

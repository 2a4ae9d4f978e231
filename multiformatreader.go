package qrscan

import (
	"errors"
	"fmt"
	"sort"
)

// ReaderFactory creates a Reader for one format.
type ReaderFactory func(opts *DecodeOptions) Reader

var readerFactories = map[Format]ReaderFactory{}

// RegisterReader registers a reader factory for the given format. It is
// called from init functions of format packages.
func RegisterReader(format Format, factory ReaderFactory) {
	readerFactories[format] = factory
}

// buildReaders creates readers for opts.PossibleFormats, or for every
// registered format when none are requested.
func buildReaders(opts *DecodeOptions) []Reader {
	var formats []Format
	if opts != nil && len(opts.PossibleFormats) > 0 {
		formats = opts.PossibleFormats
	} else {
		for f := range readerFactories {
			formats = append(formats, f)
		}
		sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	}
	var readers []Reader
	for _, f := range formats {
		if factory, ok := readerFactories[f]; ok {
			readers = append(readers, factory(opts))
		}
	}
	return readers
}

// Decode tries every applicable registered reader on image. With
// AlsoInverted set, a second round runs on the inverted matrix. The error of
// the failure that got furthest through the pipeline is returned.
func Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error) {
	readers := buildReaders(opts)
	if len(readers) == 0 {
		return nil, fmt.Errorf("no reader for requested formats: %w", ErrNotFound)
	}
	result, err := decodeWith(readers, image, opts)
	if err == nil || opts == nil || !opts.AlsoInverted {
		return result, err
	}
	inverted, ierr := image.Inverted()
	if ierr != nil {
		return nil, err
	}
	result, ierr = decodeWith(readers, inverted, opts)
	if ierr == nil {
		return result, nil
	}
	return nil, MoreSevere(err, ierr)
}

func decodeWith(readers []Reader, image *BinaryBitmap, opts *DecodeOptions) (*Result, error) {
	var last error
	for _, reader := range readers {
		result, err := reader.Decode(image, opts)
		if err == nil {
			return result, nil
		}
		last = MoreSevere(last, err)
	}
	return nil, last
}

// MoreSevere returns whichever error came from a later pipeline stage:
// checksum failures outrank format failures, which outrank not-found.
func MoreSevere(a, b error) error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if severity(b) > severity(a) {
		return b
	}
	return a
}

func severity(err error) int {
	switch {
	case errors.Is(err, ErrChecksum):
		return 3
	case errors.Is(err, ErrFormat):
		return 2
	case errors.Is(err, ErrNotFound):
		return 1
	}
	return 0
}

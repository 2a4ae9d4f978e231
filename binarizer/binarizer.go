package binarizer

import (
	"fmt"
	"sort"
	"strings"

	qrscan "github.com/ericlevine/qrscan"
)

// Factory creates a binarizer over a luminance source.
type Factory func(qrscan.LuminanceSource) qrscan.Binarizer

var factories = map[string]Factory{
	"histogram": func(s qrscan.LuminanceSource) qrscan.Binarizer { return NewGlobalHistogram(s) },
	"hybrid":    func(s qrscan.LuminanceSource) qrscan.Binarizer { return NewHybrid(s) },
}

// New returns the binarizer registered under name ("histogram" or
// "hybrid", case insensitive).
func New(name string, source qrscan.LuminanceSource) (qrscan.Binarizer, error) {
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("binarizer: unknown binarizer %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return factory(source), nil
}

// Names lists the registered binarizer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

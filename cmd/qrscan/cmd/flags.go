package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
)

// bind ties a config key to a flag. Binding only fails for a nil flag, which
// is a programming error.
func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag for %s: %v", key, err))
	}
}

package utils

import (
	"fmt"
	"strings"
)

var noColorize bool

// SetColorize toggles colorization of pretty-printed output globally.
func SetColorize(enabled bool) {
	noColorize = !enabled
}

// CanColorize wraps a color.SprintFunc so that it degrades to plain
// formatting when colorization is disabled.
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

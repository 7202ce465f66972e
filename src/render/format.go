// Package render presents container memory samples in the supported output formats.
package render

import (
	"fmt"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/newrelic/nri-dmem/src/biz"
)

const (
	notAvailable  = "N/A"
	unlimited     = "unlimited"
	nameWidth     = 30
	truncatedMark = "…"
)

var byteUnits = []struct {
	size  uint64
	label string
}{
	{humanize.PiByte, "PB"},
	{humanize.TiByte, "TB"},
	{humanize.GiByte, "GB"},
	{humanize.MiByte, "MB"},
	{humanize.KiByte, "KB"},
}

// FormatBytes renders a byte count with one decimal in 1024 based units, so 126000000 is
// "120.2 MB".
func FormatBytes(n uint64) string {
	for _, u := range byteUnits {
		if n >= u.size {
			return fmt.Sprintf("%.1f %s", float64(n)/float64(u.size), u.label)
		}
	}
	return fmt.Sprintf("%.1f B", float64(n))
}

// FormatValue renders a value for humans, using "N/A" and "unlimited" for values without bytes.
func FormatValue(v biz.Value) string {
	if n, ok := v.Uint64(); ok {
		return FormatBytes(n)
	}
	if v.IsNoLimit() {
		return unlimited
	}
	return notAvailable
}

// truncateName shortens names longer than width, marking the cut with an ellipsis.
func truncateName(name string, width int) string {
	if utf8.RuneCountInString(name) <= width {
		return name
	}
	runes := []rune(name)
	return string(runes[:width-1]) + truncatedMark
}

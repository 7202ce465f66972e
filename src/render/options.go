package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/nri"
	"github.com/newrelic/nri-dmem/src/raw"
)

// Format is an output format.
type Format string

const (
	FormatTable      Format = "table"
	FormatJSON       Format = "json"
	FormatCSV        Format = "csv"
	FormatYAML       Format = "yaml"
	FormatPrometheus Format = "prometheus"
	FormatNRI        Format = "nri"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML, FormatPrometheus, FormatNRI}

// Sort keys.
const (
	SortNone = ""
	SortName = "name"
	SortRAM  = "ram"
	SortSwap = "swap"
)

// SortKeys lists every supported sort key.
var SortKeys = []string{SortNone, SortName, SortRAM, SortSwap}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Options tells how samples are presented.
type Options struct {
	Format  Format
	Details bool
	// Filter keeps the containers whose name or id contains it, ignoring case.
	Filter string
	SortBy string
	// Color enables ANSI colours in the table output.
	Color bool
	// Warn and Crit are the byte thresholds highlighting RAM and swap usage in the table.
	Warn uint64
	Crit uint64
	// Version is the detected cgroup version, reported by the machine readable formats.
	Version raw.CgroupVersion
	// Host adds a host memory summary below the detailed table when set.
	Host *raw.HostMemory
}

// Filter returns the samples whose container name or full id contains the given substring,
// ignoring case. An empty filter keeps everything.
func Filter(samples []nri.Sample, filter string) []nri.Sample {
	if filter == "" {
		return samples
	}
	filter = strings.ToLower(filter)

	filtered := make([]nri.Sample, 0, len(samples))
	for _, s := range samples {
		if strings.Contains(strings.ToLower(s.Container.Name), filter) ||
			strings.Contains(strings.ToLower(s.Container.ID), filter) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Sort orders the samples in place. Usage sorts are descending and put unavailable values last.
// Equal keys keep their listing order.
func Sort(samples []nri.Sample, by string) {
	var less func(a, b nri.Sample) bool
	switch by {
	case SortName:
		less = func(a, b nri.Sample) bool { return a.Container.Name < b.Container.Name }
	case SortRAM:
		less = func(a, b nri.Sample) bool { return greater(a.Stats.RAM.Used, b.Stats.RAM.Used) }
	case SortSwap:
		less = func(a, b nri.Sample) bool { return greater(a.Stats.Swap.Used, b.Stats.Swap.Used) }
	default:
		return
	}
	sort.SliceStable(samples, func(i, j int) bool { return less(samples[i], samples[j]) })
}

func greater(a, b biz.Value) bool {
	x, okA := a.Uint64()
	y, okB := b.Uint64()
	if okA != okB {
		return okA
	}
	return x > y
}

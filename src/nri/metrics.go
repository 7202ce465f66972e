package nri

import (
	"github.com/newrelic/infra-integrations-sdk/v3/data/metric"

	"github.com/newrelic/nri-dmem/src/biz"
)

const (
	containerMemorySampleName = "ContainerMemorySample"
	entityNamespace           = "docker"
)

type entry struct {
	Name  string
	Type  metric.SourceType
	Value interface{}
}

func metricFunc(name string, sType metric.SourceType) func(interface{}) entry {
	return func(value interface{}) entry {
		return entry{Name: name, Type: sType, Value: value}
	}
}

var (
	metricContainerName  = metricFunc("name", metric.ATTRIBUTE)
	metricCgroupVersion  = metricFunc("cgroupVersion", metric.ATTRIBUTE)
	metricStatsError     = metricFunc("statsError", metric.ATTRIBUTE)
	metricStatsAvailable = metricFunc("statsAvailable", metric.GAUGE)

	metricRAMUsedBytes   = metricFunc("memoryUsageBytes", metric.GAUGE)
	metricRAMLimitBytes  = metricFunc("memorySizeLimitBytes", metric.GAUGE)
	metricSwapUsedBytes  = metricFunc("memorySwapOnlyUsageBytes", metric.GAUGE)
	metricSwapLimitBytes = metricFunc("memorySwapLimitBytes", metric.GAUGE)
	metricRAMUnlimited   = metricFunc("memoryUnlimited", metric.ATTRIBUTE)
	metricSwapUnlimited  = metricFunc("memorySwapUnlimited", metric.ATTRIBUTE)

	metricAnonBytes  = metricFunc("memoryAnonBytes", metric.GAUGE)
	metricFileBytes  = metricFunc("memoryFileBytes", metric.GAUGE)
	metricShmemBytes = metricFunc("memoryShmemBytes", metric.GAUGE)
	metricRSSBytes   = metricFunc("memoryResidentSizeBytes", metric.GAUGE)
)

// valueEntries adds the gauge only when the value holds bytes. Unset limits are reported through
// the unlimited attribute instead.
func valueEntries(gauge func(interface{}) entry, unlimited func(interface{}) entry, v biz.Value) []entry {
	if n, ok := v.Uint64(); ok {
		return []entry{gauge(n)}
	}
	if v.IsNoLimit() && unlimited != nil {
		return []entry{unlimited("true")}
	}
	return nil
}

func memory(stats *biz.MemoryStats) []entry {
	var entries []entry
	entries = append(entries, valueEntries(metricRAMUsedBytes, nil, stats.RAM.Used)...)
	entries = append(entries, valueEntries(metricRAMLimitBytes, metricRAMUnlimited, stats.RAM.Limit)...)
	entries = append(entries, valueEntries(metricSwapUsedBytes, nil, stats.Swap.Used)...)
	entries = append(entries, valueEntries(metricSwapLimitBytes, metricSwapUnlimited, stats.Swap.Limit)...)
	return entries
}

func detail(d *biz.Detail) []entry {
	var entries []entry
	entries = append(entries, valueEntries(metricAnonBytes, nil, d.Anon)...)
	entries = append(entries, valueEntries(metricFileBytes, nil, d.File)...)
	entries = append(entries, valueEntries(metricShmemBytes, nil, d.Shmem)...)
	entries = append(entries, valueEntries(metricRSSBytes, nil, d.RSS)...)
	return entries
}

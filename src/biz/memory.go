// Package biz provides business-value metrics from system raw metrics
package biz

import (
	"github.com/newrelic/infra-integrations-sdk/v3/log"

	"github.com/newrelic/nri-dmem/src/raw"
)

// Usage pairs a consumption with its limit.
type Usage struct {
	Used  Value
	Limit Value
}

// Detail is the breakdown of memory.stat, filled only when details are requested.
type Detail struct {
	Anon  Value
	File  Value
	Shmem Value
	RSS   Value
}

// MemoryStats is the memory usage of one container, in the same shape for both cgroup versions.
type MemoryStats struct {
	RAM    Usage
	Swap   Usage
	Detail Detail
}

// Normalizer turns the raw fields of a cgroup into MemoryStats.
type Normalizer struct {
	// ExcludeInactiveFile reports v2 RAM as memory.current minus inactive page cache, as docker
	// stats does.
	ExcludeInactiveFile bool
}

// NeedsStat tells whether memory.stat has to be read even when details are not requested.
func (n Normalizer) NeedsStat() bool {
	return n.ExcludeInactiveFile
}

// Normalize computes the stats of a container. Fields that are absent or failed to parse turn
// into Unavailable values, never into zeros.
func (n Normalizer) Normalize(fields raw.RawMemoryFields, version raw.CgroupVersion, details bool) MemoryStats {
	var stats MemoryStats
	switch version {
	case raw.CgroupV1:
		stats = n.normalizeV1(fields)
	case raw.CgroupV2:
		stats = n.normalizeV2(fields)
	default:
		return stats
	}

	if details {
		stats.Detail = Detail{
			Anon:  fieldValue(fields, raw.FieldStatAnon),
			File:  fieldValue(fields, raw.FieldStatFile),
			Shmem: fieldValue(fields, raw.FieldStatShmem),
			RSS:   fieldValue(fields, raw.FieldStatRSS),
		}
		if version == raw.CgroupV1 && !stats.Detail.File.Available() {
			stats.Detail.File = fieldValue(fields, raw.FieldStatCache)
		}
	}
	return stats
}

func (n Normalizer) normalizeV2(fields raw.RawMemoryFields) MemoryStats {
	used := fieldValue(fields, raw.FieldV2Current)
	if inactive := fieldValue(fields, raw.FieldStatInactiveFile); n.ExcludeInactiveFile && inactive.Available() {
		used = subtractClamped(used, inactive)
	}
	return MemoryStats{
		RAM: Usage{
			Used:  used,
			Limit: fieldValue(fields, raw.FieldV2Max),
		},
		Swap: Usage{
			Used:  fieldValue(fields, raw.FieldV2SwapUsage),
			Limit: fieldValue(fields, raw.FieldV2SwapMax),
		},
	}
}

func (n Normalizer) normalizeV1(fields raw.RawMemoryFields) MemoryStats {
	usage := fieldValue(fields, raw.FieldV1Usage)
	limit := fieldValue(fields, raw.FieldV1Limit)
	return MemoryStats{
		RAM: Usage{
			Used:  usage,
			Limit: limit,
		},
		Swap: Usage{
			// memsw counts memory plus swap. The two files are not read atomically, so a negative
			// difference is possible; reporting it as 0 is our choice, not a kernel guarantee.
			Used:  subtractClamped(fieldValue(fields, raw.FieldV1MemswUsage), usage),
			Limit: swapLimitV1(fieldValue(fields, raw.FieldV1MemswLimit), limit),
		},
	}
}

// swapLimitV1 derives the swap-only limit from the combined memory+swap limit.
func swapLimitV1(memswLimit, limit Value) Value {
	if memswLimit == Unavailable || limit == Unavailable {
		return Unavailable
	}
	if memswLimit.IsNoLimit() || limit.IsNoLimit() {
		return NoLimit
	}
	return subtractClamped(memswLimit, limit)
}

// subtractClamped returns a-b, or 0 when b is larger. It is Unavailable when either operand does
// not hold bytes.
func subtractClamped(a, b Value) Value {
	x, okA := a.Uint64()
	y, okB := b.Uint64()
	if !okA || !okB {
		return Unavailable
	}
	if y > x {
		log.Debug("clamping negative difference %d-%d to 0", x, y)
		return Bytes(0)
	}
	return Bytes(x - y)
}

func fieldValue(fields raw.RawMemoryFields, name string) Value {
	field, ok := fields.Get(name)
	if !ok {
		return Unavailable
	}
	if field.Err != nil {
		log.Debug("%s unavailable: %v", name, field.Err)
		return Unavailable
	}
	if field.Unlimited {
		return NoLimit
	}
	return Bytes(field.Value)
}

package biz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newrelic/nri-dmem/src/raw"
)

func TestNormalize_V2NoSwapAccounting(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV2Current: {Value: 126000000},
		raw.FieldV2Max:     {Unlimited: true},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV2, false)

	assert.Equal(t, Bytes(126000000), stats.RAM.Used)
	assert.Equal(t, NoLimit, stats.RAM.Limit)
	assert.Equal(t, Unavailable, stats.Swap.Used, "absent swap must not become 0")
	assert.Equal(t, Unavailable, stats.Swap.Limit)
	assert.Equal(t, Detail{}, stats.Detail)
}

func TestNormalize_V2RAMIsMemoryCurrent(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV2Current:        {Value: 1000},
		raw.FieldV2SwapUsage:      {Value: 0},
		raw.FieldStatInactiveFile: {Value: 300},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV2, false)
	assert.Equal(t, Bytes(1000), stats.RAM.Used)
	assert.Equal(t, Bytes(0), stats.Swap.Used)

	stats = Normalizer{ExcludeInactiveFile: true}.Normalize(fields, raw.CgroupV2, false)
	assert.Equal(t, Bytes(700), stats.RAM.Used)

	delete(fields, raw.FieldStatInactiveFile)
	stats = Normalizer{ExcludeInactiveFile: true}.Normalize(fields, raw.CgroupV2, false)
	assert.Equal(t, Bytes(1000), stats.RAM.Used)
}

func TestNormalize_V1Swap(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV1Usage:      {Value: 500000000},
		raw.FieldV1MemswUsage: {Value: 510000000},
		raw.FieldV1Limit:      {Value: 1 << 30},
		raw.FieldV1MemswLimit: {Value: 3 << 29},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV1, false)

	assert.Equal(t, Bytes(500000000), stats.RAM.Used)
	assert.Equal(t, Bytes(10000000), stats.Swap.Used)
	assert.Equal(t, Bytes(1<<30), stats.RAM.Limit)
	assert.Equal(t, Bytes(1<<29), stats.Swap.Limit)
}

func TestNormalize_V1SwapClampedAtZero(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV1Usage:      {Value: 510},
		raw.FieldV1MemswUsage: {Value: 500},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV1, false)
	assert.Equal(t, Bytes(0), stats.Swap.Used)
}

func TestNormalize_V1SwapAccountingDisabled(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV1Usage: {Value: 500},
		raw.FieldV1Limit: {Unlimited: true},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV1, false)
	assert.Equal(t, Bytes(500), stats.RAM.Used)
	assert.Equal(t, NoLimit, stats.RAM.Limit)
	assert.Equal(t, Unavailable, stats.Swap.Used)
	assert.Equal(t, Unavailable, stats.Swap.Limit)
}

func TestSwapLimitV1(t *testing.T) {
	testCases := []struct {
		name       string
		memswLimit Value
		limit      Value
		expected   Value
	}{
		{name: "both set", memswLimit: Bytes(300), limit: Bytes(100), expected: Bytes(200)},
		{name: "memsw unlimited", memswLimit: NoLimit, limit: Bytes(100), expected: NoLimit},
		{name: "both unlimited", memswLimit: NoLimit, limit: NoLimit, expected: NoLimit},
		{name: "memsw missing", memswLimit: Unavailable, limit: NoLimit, expected: Unavailable},
		{name: "memsw below limit", memswLimit: Bytes(100), limit: Bytes(300), expected: Bytes(0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, swapLimitV1(tc.memswLimit, tc.limit))
		})
	}
}

func TestNormalize_FieldErrorsDegradeOnlyTheirValue(t *testing.T) {
	fields := raw.RawMemoryFields{
		raw.FieldV2Current:   {Err: errors.New("malformed")},
		raw.FieldV2SwapUsage: {Value: 42},
	}

	stats := Normalizer{}.Normalize(fields, raw.CgroupV2, false)
	assert.Equal(t, Unavailable, stats.RAM.Used)
	assert.Equal(t, Bytes(42), stats.Swap.Used)
}

func TestNormalize_Details(t *testing.T) {
	v1 := raw.RawMemoryFields{
		raw.FieldV1Usage:   {Value: 1},
		raw.FieldStatCache: {Value: 20},
		raw.FieldStatRSS:   {Value: 30},
		raw.FieldStatShmem: {Value: 4},
	}
	stats := Normalizer{}.Normalize(v1, raw.CgroupV1, true)
	assert.Equal(t, Detail{Anon: Unavailable, File: Bytes(20), Shmem: Bytes(4), RSS: Bytes(30)}, stats.Detail)

	v2 := raw.RawMemoryFields{
		raw.FieldV2Current: {Value: 1},
		raw.FieldStatAnon:  {Value: 10},
		raw.FieldStatFile:  {Value: 20},
		raw.FieldStatShmem: {Value: 0},
	}
	stats = Normalizer{}.Normalize(v2, raw.CgroupV2, true)
	assert.Equal(t, Detail{Anon: Bytes(10), File: Bytes(20), Shmem: Bytes(0), RSS: Unavailable}, stats.Detail)
}

func TestNormalize_UnknownVersion(t *testing.T) {
	stats := Normalizer{}.Normalize(raw.RawMemoryFields{raw.FieldV2Current: {Value: 1}}, raw.CgroupUnknown, true)
	assert.Equal(t, MemoryStats{}, stats)
}

package raw

// Field is a single value read from a cgroup accounting file.
type Field struct {
	Value uint64
	// Unlimited is set when the file holds the "no limit" sentinel instead of a number.
	Unlimited bool
	// Err is set when the file exists but could not be read or parsed.
	Err error
}

// RawMemoryFields maps a field name to what was read for it. A name missing from the map was
// not read at all, either because its file does not exist or because it was not requested.
type RawMemoryFields map[string]Field

// Get returns the field and whether it was read.
func (f RawMemoryFields) Get(name string) (Field, bool) {
	field, ok := f[name]
	return field, ok
}

// Names of the fields produced by the stat reader.
const (
	FieldV1Usage      = "memory.usage_in_bytes"
	FieldV1MemswUsage = "memory.memsw.usage_in_bytes"
	FieldV1Limit      = "memory.limit_in_bytes"
	FieldV1MemswLimit = "memory.memsw.limit_in_bytes"

	FieldV2Current   = "memory.current"
	FieldV2SwapUsage = "memory.swap.current"
	FieldV2Max       = "memory.max"
	FieldV2SwapMax   = "memory.swap.max"

	FieldStatAnon         = "stat.anon"
	FieldStatFile         = "stat.file"
	FieldStatCache        = "stat.cache"
	FieldStatShmem        = "stat.shmem"
	FieldStatRSS          = "stat.rss"
	FieldStatInactiveFile = "stat.inactive_file"
)

package raw

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
	"golang.org/x/sys/unix"
)

const memoryStatFile = "memory.stat"

// fieldSpec describes where a field is read from.
type fieldSpec struct {
	Name string
	File string
	// StatKey is the key inside a flat keyed file. Empty for single value files.
	StatKey string
	Unit    Unit
	Limit   bool
	// Detail fields are only read when details are requested.
	Detail bool
}

var statFields = []fieldSpec{
	{Name: FieldStatAnon, File: memoryStatFile, StatKey: "anon", Unit: UnitBytes, Detail: true},
	{Name: FieldStatFile, File: memoryStatFile, StatKey: "file", Unit: UnitBytes, Detail: true},
	{Name: FieldStatShmem, File: memoryStatFile, StatKey: "shmem", Unit: UnitBytes, Detail: true},
	{Name: FieldStatRSS, File: memoryStatFile, StatKey: "rss", Unit: UnitBytes, Detail: true},
}

var cgroupV1Fields = append([]fieldSpec{
	{Name: FieldV1Usage, File: "memory.usage_in_bytes", Unit: UnitBytes},
	{Name: FieldV1MemswUsage, File: "memory.memsw.usage_in_bytes", Unit: UnitBytes},
	{Name: FieldV1Limit, File: "memory.limit_in_bytes", Unit: UnitBytes, Limit: true},
	{Name: FieldV1MemswLimit, File: "memory.memsw.limit_in_bytes", Unit: UnitBytes, Limit: true},
	{Name: FieldStatCache, File: memoryStatFile, StatKey: "cache", Unit: UnitBytes, Detail: true},
}, statFields...)

var cgroupV2Fields = append([]fieldSpec{
	{Name: FieldV2Current, File: "memory.current", Unit: UnitBytes},
	{Name: FieldV2SwapUsage, File: "memory.swap.current", Unit: UnitBytes},
	{Name: FieldV2Max, File: "memory.max", Unit: UnitBytes, Limit: true},
	{Name: FieldV2SwapMax, File: "memory.swap.max", Unit: UnitBytes, Limit: true},
	{Name: FieldStatInactiveFile, File: memoryStatFile, StatKey: "inactive_file", Unit: UnitBytes, Detail: true},
}, statFields...)

// StatReader reads the memory accounting files of a container cgroup.
type StatReader struct {
	open     fileOpenFn
	dirCheck func(string) error
	pageSize uint64
}

// NewStatReader returns a reader over the host filesystem.
func NewStatReader() *StatReader {
	return &StatReader{
		open:     defaultFileOpenFn,
		dirCheck: checkDir,
		pageSize: uint64(unix.Getpagesize()),
	}
}

func checkDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Read returns the fields of the given cgroup directory. A missing file only leaves its field
// out of the result. The whole read fails when the directory itself is gone, or when no file
// could be read and at least one of them failed for a reason other than being absent.
func (r *StatReader) Read(cgroupPath string, version CgroupVersion, details bool) (RawMemoryFields, error) {
	var specs []fieldSpec
	switch version {
	case CgroupV1:
		specs = cgroupV1Fields
	case CgroupV2:
		specs = cgroupV2Fields
	default:
		return nil, ErrVersionUndetectable
	}

	if err := r.dirCheck(cgroupPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}

	fields := r.readFields(cgroupPath, specs, details)
	if err := unreadableErr(fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStatsUnavailable, cgroupPath, err)
	}
	return fields, nil
}

// unreadableErr returns the first read failure when none of the fields could be read.
func unreadableErr(fields RawMemoryFields) error {
	var firstErr error
	for _, field := range fields {
		if field.Err == nil {
			return nil
		}
		if firstErr == nil && errors.Is(field.Err, ErrFieldUnreadable) {
			firstErr = field.Err
		}
	}
	return firstErr
}

func (r *StatReader) readFields(cgroupPath string, specs []fieldSpec, details bool) RawMemoryFields {
	fields := RawMemoryFields{}
	keyedFiles := map[string]map[string]string{}
	keyedErrs := map[string]error{}

	for _, spec := range specs {
		if spec.Detail && !details {
			continue
		}

		var content string
		if spec.StatKey == "" {
			var err error
			content, err = readCgroupFile(r.open, filepath.Join(cgroupPath, spec.File))
			if err != nil {
				r.recordReadErr(fields, spec, err)
				continue
			}
		} else {
			keyed, seen := keyedFiles[spec.File]
			err := keyedErrs[spec.File]
			if !seen && err == nil {
				var fileContent string
				fileContent, err = readCgroupFile(r.open, filepath.Join(cgroupPath, spec.File))
				if err == nil {
					keyed = parseFlatKeyed(fileContent)
					keyedFiles[spec.File] = keyed
				} else {
					keyedErrs[spec.File] = err
				}
			}
			if err != nil {
				r.recordReadErr(fields, spec, err)
				continue
			}
			value, ok := keyed[spec.StatKey]
			if !ok {
				continue
			}
			content = value
		}

		field := parseValue(content, spec.Limit, spec.Unit, r.pageSize)
		if field.Err != nil {
			field.Err = fmt.Errorf("%s: %w", spec.Name, field.Err)
			log.Debug("couldn't parse %s in %s: %v", spec.Name, cgroupPath, field.Err)
		}
		fields[spec.Name] = field
	}
	return fields
}

// recordReadErr stores a read failure for the field. Missing files are not stored, so the field
// stays absent.
func (r *StatReader) recordReadErr(fields RawMemoryFields, spec fieldSpec, err error) {
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("%s not present: %v", spec.File, err)
		return
	}
	log.Debug("couldn't read %s: %v", spec.File, err)
	fields[spec.Name] = Field{Err: fmt.Errorf("%w: %s: %v", ErrFieldUnreadable, spec.File, err)}
}

// Package raw fetches raw system-level metrics as they are presented by the operating system
package raw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
)

var (
	ErrVersionUndetectable = errors.New("cgroup version could not be detected")
	ErrPathNotFound        = errors.New("cgroup path not found")
	ErrFieldUnreadable     = errors.New("cgroup file unreadable")
	ErrMalformedValue      = errors.New("malformed cgroup value")
	ErrStatsUnavailable    = errors.New("cgroup stats unavailable")
)

const (
	// cgroup2 writes "max" in limit files when no limit is set.
	unlimitedLiteral = "max"
	// cgroup1 reports PAGE_COUNTER_MAX scaled by the page size (9223372036854771712 on 4k pages).
	// Anything above this threshold is treated as no limit.
	unlimitedThreshold = math.MaxInt64 / 2

	maxCgroupFileSize = 64 * 1024
)

// Unit tells how a field value has to be scaled to bytes.
type Unit int

const (
	UnitBytes Unit = iota
	UnitPages
)

// readCgroupFile returns the trimmed content of a cgroup file.
func readCgroupFile(open fileOpenFn, filePath string) (string, error) {
	f, err := open(filePath)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error("Error occurred while closing the file: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(io.LimitReader(f, maxCgroupFileSize))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

// parseFlatKeyed parses files with one "key value" pair per line, such as memory.stat.
// Values are kept as strings so a single malformed entry only affects its own key.
func parseFlatKeyed(content string) map[string]string {
	values := make(map[string]string)

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		values[fields[0]] = fields[1]
	}
	return values
}

// parseValue converts the content of a cgroup value into a Field. The unlimited sentinels are
// only honoured for limit fields.
func parseValue(content string, limit bool, unit Unit, pageSize uint64) Field {
	content = strings.TrimSpace(content)
	if limit && (content == unlimitedLiteral || content == "-1") {
		return Field{Unlimited: true}
	}

	value, err := strconv.ParseUint(content, 10, 64)
	if err != nil {
		return Field{Err: fmt.Errorf("%w: %q", ErrMalformedValue, content)}
	}

	if limit && value > unlimitedThreshold {
		return Field{Unlimited: true}
	}

	if unit == UnitPages {
		value *= pageSize
	}
	return Field{Value: value}
}

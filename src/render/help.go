package render

import (
	"io"
)

const columnHelp = `
COLUMNS:
  CONTAINER   - Docker container name
  ID          - Container ID, first 12 characters
  RAM Used    - Current RAM usage by container
  SWAP Used   - Current swap usage by container
  Limit       - RAM limit for container (if set)
  SwapLimit   - Swap limit for container (if set)
  Anon        - Anonymous memory (non-file-backed)
  File        - File/pagecache memory
  Shmem       - Shared memory
  RSS         - Resident Set Size (anon + part of file), cgroup v1 only

VALUES:
  N/A         - The value could not be read (no swap accounting, container gone, ...)
  unlimited   - No limit is set
`

// WriteColumnHelp describes the output columns.
func WriteColumnHelp(w io.Writer) error {
	_, err := io.WriteString(w, columnHelp)
	return err
}

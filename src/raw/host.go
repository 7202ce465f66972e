package raw

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/mem"
)

const hostProcEnv = "HOST_PROC"

// HostMemory holds the RAM and swap totals of the host.
type HostMemory struct {
	RAMTotal  uint64
	RAMUsed   uint64
	SwapTotal uint64
	SwapUsed  uint64
}

// ConfigureHostProc points gopsutil at the proc filesystem of the host when it is mounted
// somewhere else than /proc. An already set HOST_PROC is kept.
func ConfigureHostProc(hostRoot string) error {
	if filepath.Clean(hostRoot) == "/" {
		return nil
	}
	return os.Setenv(hostProcEnv, getEnv(hostProcEnv, filepath.Join(hostRoot, "proc")))
}

// GetHostMemory reads the host memory totals from /proc/meminfo.
func GetHostMemory() (HostMemory, error) {
	vmem, err := mem.VirtualMemory()
	if err != nil {
		return HostMemory{}, err
	}
	swap, err := mem.SwapMemory()
	if err != nil {
		return HostMemory{}, err
	}
	return HostMemory{
		RAMTotal:  vmem.Total,
		RAMUsed:   vmem.Used,
		SwapTotal: swap.Total,
		SwapUsed:  swap.Used,
	}, nil
}

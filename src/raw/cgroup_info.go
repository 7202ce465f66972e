package raw

import (
	"context"
	"strings"
)

// CgroupVersion is the cgroup hierarchy that owns the memory controller on the host.
type CgroupVersion int

const (
	CgroupUnknown CgroupVersion = iota
	CgroupV1
	CgroupV2
)

func (v CgroupVersion) String() string {
	switch v {
	case CgroupV1:
		return "v1"
	case CgroupV2:
		return "v2"
	}
	return "unknown"
}

const (
	CgroupSystemd = "systemd"
	CgroupGroupfs = "cgroupfs"
)

// CgroupLayout is the result of detecting the host cgroup hierarchy. It is computed once per run
// and shared read-only by every container lookup.
type CgroupLayout struct {
	Version CgroupVersion
	// Hybrid is set when a cgroup2 hierarchy is mounted next to the v1 controllers.
	Hybrid bool
	// MemoryRoot is the v1 memory controller mount point or the v2 unified mount point.
	MemoryRoot string
	// Driver is the container engine cgroup driver, empty when unknown.
	Driver string
}

// CgroupInfo holds what the docker engine reports about cgroups.
type CgroupInfo struct {
	Version string
	Driver  string
}

// GetCgroupInfo asks the engine for its cgroup version and driver.
func GetCgroupInfo(ctx context.Context, informer DockerInformer) (*CgroupInfo, error) {
	info, err := informer.Info(ctx)
	if err != nil {
		return nil, err
	}
	return &CgroupInfo{Version: info.CgroupVersion, Driver: strings.ToLower(info.CgroupDriver)}, nil
}

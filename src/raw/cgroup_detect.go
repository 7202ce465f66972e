//go:build linux

package raw

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/containerd/cgroups"
	"github.com/moby/sys/mountinfo"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	"golang.org/x/sys/unix"
)

const (
	mountInfoFilePath = "/proc/self/mountinfo"
	cgroupRootPath    = "/sys/fs/cgroup"
	cgroupV1FSType    = "cgroup"
	cgroupV2FSType    = "cgroup2"
)

var errNoCgroupMounts = errors.New("no cgroup mount holding the memory controller was found")

// Detector finds out which cgroup hierarchy holds the memory controller of the host.
type Detector struct {
	hostRoot string
	open     fileOpenFn
	statfs   func(path string) (int64, error)
	mode     func() cgroups.CGMode
}

// NewDetector returns a Detector looking at the host mounted on hostRoot.
func NewDetector(hostRoot string) *Detector {
	return &Detector{
		hostRoot: hostRoot,
		open:     defaultFileOpenFn,
		statfs:   statfsType,
		mode:     cgroups.Mode,
	}
}

// Detect returns the cgroup layout of the host, or ErrVersionUndetectable.
// Mount information is used first, then the filesystem type of the cgroup root. The containerd
// cgroups mode check is only trusted when looking at the root filesystem of this process.
func (d *Detector) Detect() (CgroupLayout, error) {
	layout, err := d.fromMountInfo()
	if err == nil {
		log.Debug("Detected cgroup %s from mountinfo (hybrid: %t, memory root: %s)", layout.Version, layout.Hybrid, layout.MemoryRoot)
		return layout, nil
	}
	log.Debug("couldn't detect cgroup version from mountinfo: %v", err)

	layout, err = d.fromStatfs()
	if err == nil {
		log.Debug("Detected cgroup %s from the cgroup root filesystem type", layout.Version)
		return layout, nil
	}
	log.Debug("couldn't detect cgroup version from statfs: %v", err)

	if filepath.Clean(d.hostRoot) == "/" {
		if layout, ok := d.fromMode(); ok {
			log.Debug("Detected cgroup %s from cgroups mode", layout.Version)
			return layout, nil
		}
	}

	return CgroupLayout{}, ErrVersionUndetectable
}

func (d *Detector) fromMountInfo() (CgroupLayout, error) {
	mountInfoPath := filepath.Join(d.hostRoot, mountInfoFilePath)
	f, err := d.open(mountInfoPath)
	if err != nil {
		return CgroupLayout{}, fmt.Errorf("failed to open file: %s, while detecting cgroup mountpoints error: %v", mountInfoPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error("Error occurred while closing the file: %v", closeErr)
		}
	}()

	mounts, err := mountinfo.GetMountsFromReader(f, mountinfo.FSTypeFilter(cgroupV1FSType, cgroupV2FSType))
	if err != nil {
		return CgroupLayout{}, fmt.Errorf("failed to parse %s: %v", mountInfoPath, err)
	}
	return layoutFromMounts(d.hostRoot, mounts)
}

// layoutFromMounts picks the memory controller hierarchy among the cgroup mounts below hostRoot.
// A v1 memory mount wins over a cgroup2 mount since on hybrid hosts the memory controller stays
// on the legacy hierarchy.
func layoutFromMounts(hostRoot string, mounts []*mountinfo.Info) (CgroupLayout, error) {
	var v1Memory, unified string
	for _, m := range mounts {
		if !isUnder(m.Mountpoint, hostRoot) {
			continue
		}
		switch m.FSType {
		case cgroupV2FSType:
			if unified == "" {
				unified = m.Mountpoint
			}
		case cgroupV1FSType:
			if v1Memory == "" && hasMemoryController(m) {
				v1Memory = m.Mountpoint
			}
		}
	}

	switch {
	case v1Memory != "":
		return CgroupLayout{Version: CgroupV1, Hybrid: unified != "", MemoryRoot: v1Memory}, nil
	case unified != "":
		return CgroupLayout{Version: CgroupV2, MemoryRoot: unified}, nil
	}
	return CgroupLayout{}, errNoCgroupMounts
}

func hasMemoryController(m *mountinfo.Info) bool {
	controllers := strings.Split(m.VFSOptions, ",")
	controllers = append(controllers, strings.Split(filepath.Base(m.Mountpoint), ",")...)
	for _, c := range controllers {
		if c == string(cgroups.Memory) {
			return true
		}
	}
	return false
}

func (d *Detector) fromStatfs() (CgroupLayout, error) {
	root := filepath.Join(d.hostRoot, cgroupRootPath)
	fsType, err := d.statfs(root)
	if err != nil {
		return CgroupLayout{}, err
	}

	switch fsType {
	case unix.CGROUP2_SUPER_MAGIC:
		return CgroupLayout{Version: CgroupV2, MemoryRoot: root}, nil
	case unix.TMPFS_MAGIC:
		memoryRoot, found := getFirstExistingDir([]string{
			filepath.Join(root, string(cgroups.Memory)),
			filepath.Join(root, "memory,memsw"),
		})
		if found {
			return CgroupLayout{
				Version:    CgroupV1,
				Hybrid:     dirExists(filepath.Join(root, "unified")),
				MemoryRoot: memoryRoot,
			}, nil
		}
	}
	return CgroupLayout{}, fmt.Errorf("unexpected filesystem type 0x%x on %s", fsType, root)
}

func (d *Detector) fromMode() (CgroupLayout, bool) {
	switch d.mode() {
	case cgroups.Unified:
		return CgroupLayout{Version: CgroupV2, MemoryRoot: cgroupRootPath}, true
	case cgroups.Legacy:
		return CgroupLayout{Version: CgroupV1, MemoryRoot: filepath.Join(cgroupRootPath, string(cgroups.Memory))}, true
	case cgroups.Hybrid:
		return CgroupLayout{Version: CgroupV1, Hybrid: true, MemoryRoot: filepath.Join(cgroupRootPath, string(cgroups.Memory))}, true
	}
	return CgroupLayout{}, false
}

func statfsType(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Type), nil
}

// isUnder reports whether p is root or a path below it.
func isUnder(p, root string) bool {
	root = filepath.Clean(root)
	if root == "/" || root == "." {
		return true
	}
	p = filepath.Clean(p)
	return p == root || strings.HasPrefix(p, root+"/")
}

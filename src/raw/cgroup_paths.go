package raw

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
)

const (
	defaultMaxSearchDepth = 6
	systemdSliceSuffix    = ".slice"
	dockerScopePrefix     = "docker-"
	scopeSuffix           = ".scope"
	dockerCgroupfsParent  = "docker"
	dockerSystemdParent   = "system.slice"
)

// PathResolver finds the cgroup directory of a container below the memory root of the host.
type PathResolver struct {
	hostRoot       string
	layout         CgroupLayout
	open           fileOpenFn
	dirExists      func(string) bool
	maxSearchDepth int
}

// NewPathResolver returns a resolver for the given layout. The layout memory root is already
// expected to include hostRoot.
func NewPathResolver(hostRoot string, layout CgroupLayout) *PathResolver {
	return &PathResolver{
		hostRoot:       hostRoot,
		layout:         layout,
		open:           defaultFileOpenFn,
		dirExists:      dirExists,
		maxSearchDepth: defaultMaxSearchDepth,
	}
}

// Resolve returns the first existing cgroup directory among the known locations of the container:
// the custom cgroup parent, the docker cgroupfs and systemd layouts in driver order, the path read
// from /proc/<pid>/cgroup, and finally a bounded search below the memory root.
func (r *PathResolver) Resolve(c ContainerRef) (string, error) {
	if r.layout.Version == CgroupUnknown {
		return "", ErrVersionUndetectable
	}

	for _, group := range r.candidates(c) {
		p, err := securejoin.SecureJoin(r.layout.MemoryRoot, group)
		if err != nil {
			log.Debug("skipping cgroup candidate %s: %v", group, err)
			continue
		}
		if r.dirExists(p) {
			log.Debug("container %s cgroup found at %s", c.DisplayID(), p)
			return p, nil
		}
	}

	if p, ok := r.search(c.ID); ok {
		log.Debug("container %s cgroup found by search at %s", c.DisplayID(), p)
		return p, nil
	}
	return "", fmt.Errorf("%w: container %s", ErrPathNotFound, c.DisplayID())
}

func (r *PathResolver) candidates(c ContainerRef) []string {
	var groups []string

	if c.CgroupParent != "" {
		groups = append(groups, parentGroup(c.CgroupParent, c.ID))
	}

	cgroupfs := filepath.Join(dockerCgroupfsParent, c.ID)
	systemd := filepath.Join(dockerSystemdParent, dockerScopePrefix+c.ID+scopeSuffix)
	if r.systemdFirst() {
		groups = append(groups, systemd, cgroupfs)
	} else {
		groups = append(groups, cgroupfs, systemd)
	}

	if group, err := r.pidGroup(c.Pid); err == nil {
		groups = append(groups, group)
	} else if c.Pid > 0 {
		log.Debug("couldn't get cgroup of pid %d: %v", c.Pid, err)
	}
	return groups
}

// systemdFirst tells whether the systemd scope path is tried before the cgroupfs one. Unified
// hosts default to systemd and legacy hosts to cgroupfs unless the engine says otherwise.
func (r *PathResolver) systemdFirst() bool {
	switch r.layout.Driver {
	case CgroupSystemd:
		return true
	case CgroupGroupfs:
		return false
	}
	return r.layout.Version == CgroupV2
}

// parentGroup builds the cgroup of a container started with a custom cgroup parent.
func parentGroup(parent, id string) string {
	if strings.HasSuffix(parent, systemdSliceSuffix) && !strings.Contains(parent, "/") {
		return filepath.Join(expandSlice(parent), dockerScopePrefix+id+scopeSuffix)
	}
	return filepath.Join(parent, id)
}

// expandSlice turns a systemd slice name into its path, "a-b-c.slice" becoming
// "a.slice/a-b.slice/a-b-c.slice".
func expandSlice(slice string) string {
	name := strings.TrimSuffix(slice, systemdSliceSuffix)
	if name == "" || name == "-" {
		return ""
	}

	var path []string
	prefix := ""
	for _, part := range strings.Split(name, "-") {
		if part == "" {
			continue
		}
		prefix += part
		path = append(path, prefix+systemdSliceSuffix)
		prefix += "-"
	}
	return filepath.Join(path...)
}

// pidGroup reads the memory cgroup of a process from /proc/<pid>/cgroup.
func (r *PathResolver) pidGroup(pid int) (string, error) {
	if pid <= 0 {
		return "", errors.New("container has no running process")
	}

	cgroupFilePath := filepath.Join(r.hostRoot, "proc", strconv.Itoa(pid), "cgroup")
	content, err := readCgroupFile(r.open, cgroupFilePath)
	if err != nil {
		return "", err
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		// hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(sc.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}
		if r.matchesHierarchy(parts[0], parts[1]) {
			if parts[2] == "/" || parts[2] == "" {
				return "", fmt.Errorf("process %d is in the root cgroup", pid)
			}
			return parts[2], nil
		}
	}
	return "", fmt.Errorf("no memory cgroup entry for process %d in %s", pid, cgroupFilePath)
}

func (r *PathResolver) matchesHierarchy(id, controllers string) bool {
	if r.layout.Version == CgroupV2 {
		return id == "0" && controllers == ""
	}
	for _, c := range strings.Split(controllers, ",") {
		if c == "memory" {
			return true
		}
	}
	return false
}

// search walks the memory root looking for a directory named after the container.
func (r *PathResolver) search(id string) (string, bool) {
	if id == "" {
		return "", false
	}

	root := filepath.Clean(r.layout.MemoryRoot)
	rootDepth := strings.Count(root, string(filepath.Separator))
	scope := dockerScopePrefix + id + scopeSuffix

	var found string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); p != root && (name == id || name == scope) {
			found = p
			return fs.SkipAll
		}
		if strings.Count(p, string(filepath.Separator))-rootDepth >= r.maxSearchDepth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		log.Debug("cgroup search below %s failed: %v", root, err)
	}
	return found, found != ""
}

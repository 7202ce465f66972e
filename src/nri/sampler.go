// Package nri gathers the memory samples of the running containers and turns them into New Relic
// integration entities.
package nri

import (
	"context"
	"errors"
	"fmt"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/raw"
)

// Sample is the memory usage of one container. Err is set when none of its stats could be read.
type Sample struct {
	Container raw.ContainerRef
	Stats     biz.MemoryStats
	Err       error
}

// Available reports whether the stats of the sample were read.
func (s Sample) Available() bool {
	return s.Err == nil
}

// PathResolver locates the cgroup directory of a container.
type PathResolver interface {
	Resolve(c raw.ContainerRef) (string, error)
}

// StatReader reads the memory fields of a cgroup directory.
type StatReader interface {
	Read(cgroupPath string, version raw.CgroupVersion, details bool) (raw.RawMemoryFields, error)
}

// ContainerSampler runs the memory pipeline over every running container.
type ContainerSampler struct {
	lister     raw.ContainerLister
	resolver   PathResolver
	reader     StatReader
	normalizer biz.Normalizer
	layout     raw.CgroupLayout
	details    bool
	workers    int
}

// Config holds the per-run settings of a ContainerSampler.
type Config struct {
	Layout  raw.CgroupLayout
	Details bool
	// Workers bounds the containers processed at once. Values below 2 process them sequentially.
	Workers int
}

// NewSampler returns a ContainerSampler instance.
func NewSampler(lister raw.ContainerLister, resolver PathResolver, reader StatReader, normalizer biz.Normalizer, cfg Config) *ContainerSampler {
	return &ContainerSampler{
		lister:     lister,
		resolver:   resolver,
		reader:     reader,
		normalizer: normalizer,
		layout:     cfg.Layout,
		details:    cfg.Details,
		workers:    cfg.Workers,
	}
}

// SampleAll returns one Sample per running container, in listing order. Only a listing failure is
// returned as an error: a container whose stats can't be read is kept with Err set.
func (cs *ContainerSampler) SampleAll(ctx context.Context) ([]Sample, error) {
	containers, err := cs.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, len(containers))
	if cs.workers < 2 {
		for idx, c := range containers {
			samples[idx] = cs.sample(c)
		}
		return samples, nil
	}

	g := errgroup.Group{}
	g.SetLimit(cs.workers)
	for idx, c := range containers {
		g.Go(func() error {
			samples[idx] = cs.sample(c)
			return nil
		})
	}
	// goroutines never fail
	_ = g.Wait()
	return samples, nil
}

func (cs *ContainerSampler) sample(c raw.ContainerRef) Sample {
	s := Sample{Container: c}
	if cs.layout.Version == raw.CgroupUnknown {
		s.Err = raw.ErrVersionUndetectable
		return s
	}

	cgroupPath, err := cs.resolver.Resolve(c)
	if err != nil {
		log.Debug("resolving cgroup of container %s (%s): %v", c.DisplayID(), c.Name, err)
		s.Err = err
		return s
	}

	fields, err := cs.reader.Read(cgroupPath, cs.layout.Version, cs.details || cs.normalizer.NeedsStat())
	if err != nil {
		if !errors.Is(err, raw.ErrStatsUnavailable) {
			err = errors.Join(raw.ErrStatsUnavailable, err)
		}
		err = fmt.Errorf("container %s: %w", c.DisplayID(), err)
		log.Debug("reading memory stats of container %s (%s): %v", c.DisplayID(), c.Name, err)
		s.Err = err
		return s
	}

	s.Stats = cs.normalizer.Normalize(fields, cs.layout.Version, cs.details)
	return s
}

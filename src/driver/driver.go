// Copyright 2025 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/docker/docker/client"
	"github.com/mattn/go-isatty"
	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/config"
	"github.com/newrelic/nri-dmem/src/nri"
	"github.com/newrelic/nri-dmem/src/raw"
	"github.com/newrelic/nri-dmem/src/render"
)

const (
	IntegrationName = "com.newrelic.dmem"
)

func ExitOnErr(err error) {
	if err != nil {
		log.Error(err.Error())
		os.Exit(-1)
	}
}

func PrintVersion(integrationVersion, gitCommit, buildDate string) {
	fmt.Printf(
		"New Relic dmem integration Version: %s, Platform: %s, GoVersion: %s, GitCommit: %s, BuildDate: %s\n",
		integrationVersion,
		fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		runtime.Version(),
		gitCommit,
		buildDate)
}

// NewDockerClient builds the engine client from the environment. The API version is negotiated
// unless one is given.
func NewDockerClient(version string) (*client.Client, error) {
	opts := []client.Opt{client.FromEnv}
	if version != "" {
		opts = append(opts, client.WithVersion(version))
	} else {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}
	return client.NewClientWithOpts(opts...)
}

// Run gathers the memory samples of every running container and writes them to out. Only a
// failure to reach the container engine is returned: containers whose stats can't be read are
// rendered as unavailable.
func Run(ctx context.Context, i *integration.Integration, args config.ArgumentList, docker raw.DockerClient, out io.Writer) error {
	hostRoot, err := raw.DetectHostRoot(args.HostRoot, raw.PathExists)
	if err != nil {
		return err
	}
	log.Debug("Using host root %s", hostRoot)
	if err := raw.ConfigureHostProc(hostRoot); err != nil {
		log.Warn("configuring host proc: %v", err)
	}

	cachedDocker := raw.NewCachedInfoDockerClient(docker)
	layout := DetectLayout(ctx, raw.NewDetector(hostRoot), cachedDocker)

	sampler := nri.NewSampler(
		raw.NewDockerLister(cachedDocker),
		raw.NewPathResolver(hostRoot, layout),
		raw.NewStatReader(),
		biz.Normalizer{ExcludeInactiveFile: args.ExcludeInactiveFile},
		nri.Config{Layout: layout, Details: args.Details, Workers: args.Workers},
	)
	samples, err := sampler.SampleAll(ctx)
	if err != nil {
		return fmt.Errorf("listing containers: %w", err)
	}

	opts, err := RenderOptions(args, layout.Version, out)
	if err != nil {
		return err
	}
	if opts.Details && opts.Format == render.FormatTable {
		if host, err := raw.GetHostMemory(); err == nil {
			opts.Host = &host
		} else {
			log.Warn("reading host memory: %v", err)
		}
	}
	return render.New(opts, i).Render(out, samples)
}

// LayoutDetector finds the cgroup layout of the host.
type LayoutDetector interface {
	Detect() (raw.CgroupLayout, error)
}

// DetectLayout runs the cgroup detection once and completes it with the engine cgroup driver.
// An undetectable version is not an error: the layout stays unknown and every container will be
// reported as unavailable.
func DetectLayout(ctx context.Context, detector LayoutDetector, informer raw.DockerInformer) raw.CgroupLayout {
	layout, err := detector.Detect()
	if err != nil {
		log.Warn("detecting cgroup version, memory stats are unavailable for all containers: %v", err)
		layout = raw.CgroupLayout{}
	}

	info, err := raw.GetCgroupInfo(ctx, informer)
	if err != nil {
		log.Debug("couldn't get the cgroup driver from the engine: %v", err)
		return layout
	}
	layout.Driver = info.Driver
	if layout.Version != raw.CgroupUnknown && info.Version != "" && info.Version != versionNumber(layout.Version) {
		log.Debug("engine reports cgroup v%s, detected %s", info.Version, layout.Version)
	}
	return layout
}

func versionNumber(v raw.CgroupVersion) string {
	switch v {
	case raw.CgroupV1:
		return "1"
	case raw.CgroupV2:
		return "2"
	}
	return ""
}

// RenderOptions maps the arguments to the presentation options.
func RenderOptions(args config.ArgumentList, version raw.CgroupVersion, out io.Writer) (render.Options, error) {
	format, err := render.ParseFormat(args.Output)
	if err != nil {
		return render.Options{}, err
	}
	warn, crit, err := args.Thresholds()
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Format:  format,
		Details: args.Details,
		Filter:  args.Filter,
		SortBy:  args.SortBy,
		Color:   !args.NoColor && isTerminal(out),
		Warn:    warn,
		Crit:    crit,
		Version: version,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

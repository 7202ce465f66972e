package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/newrelic/infra-integrations-sdk/v3/args"
)

type ArgumentList struct {
	args.DefaultArgumentList
	HostRoot            string `default:"" help:"If the integration is running from a container, the mounted folder pointing to the host root folder"`
	Details             bool   `default:"false" help:"Show all columns: Limit, SwapLimit, Anon, File, Shmem, RSS."`
	Filter              string `default:"" help:"Show only containers whose name or ID contains the given substring."`
	Output              string `default:"table" help:"Output format: table, json, csv, yaml, prometheus or nri."`
	SortBy              string `default:"" help:"Sort containers by name, ram or swap. Keeps the engine order when empty."`
	Workers             int    `default:"1" help:"Number of containers read in parallel."`
	WarnThreshold       string `default:"500MiB" help:"RAM and swap usage shown in yellow in the table output."`
	CritThreshold       string `default:"2GiB" help:"RAM and swap usage shown in red in the table output."`
	NoColor             bool   `default:"false" help:"Disable colours in the table output."`
	ExcludeInactiveFile bool   `default:"false" help:"On cgroup v2, report RAM as memory.current minus inactive page cache, like docker stats."`
	DockerClientVersion string `default:"" help:"Optional. Specify the version of the docker client. The API version is negotiated when empty."`
	HelpCols            bool   `default:"false" help:"Show the description of each output column and exit."`
	ShowVersion         bool   `default:"false" help:"Print build information and exit"`
}

var (
	outputFormats = []string{"table", "json", "csv", "yaml", "prometheus", "nri"}
	sortKeys      = []string{"", "name", "ram", "swap"}
)

// Validate checks the values that the flag parser can't.
func (a *ArgumentList) Validate() error {
	a.Output = strings.ToLower(a.Output)
	if !contains(outputFormats, a.Output) {
		return fmt.Errorf("invalid output %q, expected one of %s", a.Output, strings.Join(outputFormats, ", "))
	}
	a.SortBy = strings.ToLower(a.SortBy)
	if !contains(sortKeys, a.SortBy) {
		return fmt.Errorf("invalid sort_by %q, expected name, ram or swap", a.SortBy)
	}
	if a.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", a.Workers)
	}

	warn, crit, err := a.Thresholds()
	if err != nil {
		return err
	}
	if warn > crit {
		return fmt.Errorf("warn_threshold %s is above crit_threshold %s", a.WarnThreshold, a.CritThreshold)
	}
	return nil
}

// Thresholds returns the warn and crit thresholds in bytes.
func (a *ArgumentList) Thresholds() (warn, crit uint64, err error) {
	warn, err = humanize.ParseBytes(a.WarnThreshold)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid warn_threshold: %w", err)
	}
	crit, err = humanize.ParseBytes(a.CritThreshold)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid crit_threshold: %w", err)
	}
	return warn, crit, nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

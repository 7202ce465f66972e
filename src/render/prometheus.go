package render

import (
	"io"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/nri"
	"github.com/newrelic/nri-dmem/src/raw"
)

const namespace = "dmem"

var (
	containerLabels = []string{"id", "name"}

	statsAvailableDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "stats_available"),
		"Whether the memory stats of the container could be read.", containerLabels, nil)
	ramUsedDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "ram_used_bytes"),
		"Current RAM usage of the container.", containerLabels, nil)
	ramLimitDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "ram_limit_bytes"),
		"RAM limit of the container, +Inf when not set.", containerLabels, nil)
	swapUsedDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "swap_used_bytes"),
		"Current swap usage of the container.", containerLabels, nil)
	swapLimitDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "swap_limit_bytes"),
		"Swap limit of the container, +Inf when not set.", containerLabels, nil)
	statDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "container", "memory_stat_bytes"),
		"Memory breakdown of the container from memory.stat.", append(containerLabels, "type"), nil)
	cgroupInfoDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "cgroup", "info"),
		"Detected cgroup version of the host.", []string{"version"}, nil)
)

// sampleCollector exposes a fixed set of samples. It implements prometheus.Collector.
type sampleCollector struct {
	samples []nri.Sample
	details bool
	version raw.CgroupVersion
}

func (c *sampleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- statsAvailableDesc
	ch <- ramUsedDesc
	ch <- ramLimitDesc
	ch <- swapUsedDesc
	ch <- swapLimitDesc
	ch <- statDesc
	ch <- cgroupInfoDesc
}

func (c *sampleCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(cgroupInfoDesc, prometheus.GaugeValue, 1, c.version.String())

	for _, s := range c.samples {
		labels := []string{s.Container.ID, s.Container.Name}
		if !s.Available() {
			ch <- prometheus.MustNewConstMetric(statsAvailableDesc, prometheus.GaugeValue, 0, labels...)
			continue
		}
		ch <- prometheus.MustNewConstMetric(statsAvailableDesc, prometheus.GaugeValue, 1, labels...)

		st := s.Stats
		sendValue(ch, ramUsedDesc, st.RAM.Used, labels...)
		sendValue(ch, ramLimitDesc, st.RAM.Limit, labels...)
		sendValue(ch, swapUsedDesc, st.Swap.Used, labels...)
		sendValue(ch, swapLimitDesc, st.Swap.Limit, labels...)
		if c.details {
			sendValue(ch, statDesc, st.Detail.Anon, append(labels, "anon")...)
			sendValue(ch, statDesc, st.Detail.File, append(labels, "file")...)
			sendValue(ch, statDesc, st.Detail.Shmem, append(labels, "shmem")...)
			sendValue(ch, statDesc, st.Detail.RSS, append(labels, "rss")...)
		}
	}
}

// sendValue skips unavailable values and exports unset limits as +Inf.
func sendValue(ch chan<- prometheus.Metric, desc *prometheus.Desc, v biz.Value, labels ...string) {
	if n, ok := v.Uint64(); ok {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(n), labels...)
		return
	}
	if v.IsNoLimit() {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, math.Inf(1), labels...)
	}
}

func writePrometheus(w io.Writer, samples []nri.Sample, opts Options) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(&sampleCollector{samples: samples, details: opts.Details, version: opts.Version}); err != nil {
		return err
	}

	families, err := registry.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
